// Package types defines the Cereal enumeration, the CerealStorage and Granary
// interfaces, configuration, and the standard error values for the granary
// storage system.
package types
