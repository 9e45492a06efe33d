// Package rosidl models robot interface definitions (messages, services and
// actions) and parses their on-disk text formats into structured specs.
//
// A spec belongs to exactly one package and exposes the set of packages it
// directly references, which is the raw material for dependency resolution.
// Actions additionally synthesize a Goal/Result/Feedback family of
// sub-messages that behave like ordinary messages downstream.
package rosidl
