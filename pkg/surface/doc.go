// Package surface normalizes raw descriptor entries into the flattened public
// surface of a widget class: its own members layered over everything it
// inherits, in a fixed order (properties, aggregations, associations, events;
// inherited before own within each kind).
package surface
