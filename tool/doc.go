// Package tool implements the capability subsystem that lets agents invoke
// structured external functions (computations, APIs, perception and control
// services) with schema validated arguments and consistent error handling.
//
// Tools are registered per agent definition, not process-global. Whatever
// side effects a tool performs are its own: the execution loop does not roll
// back a tool's external effect when a later stage aborts.
package tool
