// Package status builds and renders the merged status view of managed
// containers.
//
// A status view joins the live containers reported by the engine with the
// declared container definitions by name. Every live container becomes one
// row showing its engine state; every declared name without a live
// container becomes a placeholder row marked NOT CREATED. Render turns the
// rows into a left-aligned text table whose column widths are derived from
// the data.
package status
