// Package descriptor extracts widget metadata descriptors from TypeScript and
// JavaScript source.
//
// A widget class declares its configuration surface as a static object literal:
//
//	static readonly metadata = {
//		properties: { text: "string" },
//		aggregations: { content: { type: "sap.ui.core.Control", multiple: true } },
//		defaultAggregation: "content",
//	};
//
// Parse reads such descriptors without executing any code. Entries are kept
// as authored; normalization happens in package surface.
package descriptor
