package face

// Embedding is an opaque fixed-length feature vector describing one face.
// It carries no reference back to the image or region it was computed from.
type Embedding []float32
