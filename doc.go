// Package layoutview renders hierarchical integrated-circuit layout data.
//
// A layout is a library of named structures (cells). Each structure holds
// polygons, paths, and placements of other structures, every placement
// carrying its own translation, rotation, and reflection. The packages in
// this module flatten that hierarchy into world-space geometry and feed it
// to one of two backends: GPU vertex/index batches for interactive viewing,
// or a streaming vector document for static export.
//
// Pipeline, leaves first:
//
//	model      typed, immutable store of libraries, structures, elements
//	resolve    walks the instance graph, composes transforms, emits
//	           world-space shapes
//	geometry   triangulates polygons and strokes paths into renderable
//	           primitives
//	scenestore spatial index over primitives for culling and picking
//	raster     style-batched GPU buffers for interactive display
//	vector     streaming SVG export, no GPU required
//	gds        binary GDSII decoder feeding the model
//
// The root package holds the shared geometry value types (Point, Matrix,
// Rect), layer keys and styles, the camera, and the module-wide logger.
//
// All coordinates below the geometry stage are integer database units;
// the library's unit scale is carried explicitly across every boundary.
package layoutview
