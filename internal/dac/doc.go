// Package dac is the hardware feature broker for the ES9218 Hi-Fi DAC.
//
// It discovers which adjustable features exist on the running unit, exposes
// their legal value spaces, and mediates all get/set operations against the
// kernel's control files and the persistent property store.
//
// # Architecture
//
//	ResolveBasePath ──▶ base path ──▶ Controller
//	                                    │ probe control files (once)
//	                                    │ prime hardware from property store
//	                                    ▼
//	                        validate ▶ convert ▶ write file + property
//
// Two feature kinds exist: a continuous attenuation range (AVC volume,
// -24..0 dB) and a discrete mode selector (hifi mode: Normal, High
// Impedance, AUX). The catalog of supported features is built once at
// construction by probing which control files are present, and is immutable
// afterwards.
//
// Values are dual-homed: the hardware control file holds the raw value
// (sign-flipped for volume), the property store holds the canonical signed
// value and seeds the hardware on the next start. Reads always come from
// the property store.
//
// # Error model
//
// Nothing here panics or propagates faults to the transport. Discovery
// failure degrades to an empty catalog; operations on unsupported features
// return sentinels (-1 for reads, false for writes, comma-ok false for
// value-space queries) and log the event.
package dac
