// Package vm implements the knowhow object model and its bootstrap.
//
// This package contains:
//   - Representation (REPR) contract and registry
//   - Shared type descriptors (STables) with method and type-check caches
//   - The bootstrap representations: VMString, VMArray, VMHash,
//     VMCFunction, KnowHOWREPR and P6opaque
//   - The KnowHOW meta-object and its new_type/add_method/compose methods
//   - The ordered bootstrap that ties KnowHOW.HOW back to itself
//
// Object model state lives on a *VM; package state is limited to the
// fixed bootstrap plan.
package vm
