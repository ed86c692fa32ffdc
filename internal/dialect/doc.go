// Package dialect names the language modes understood by the conversion
// engine. The mode travels inside every conv.Context value.
package dialect
