// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports): embedding providers, the tool-calling
// endpoint, document/preference/history stores, and capability signals.
package driven
