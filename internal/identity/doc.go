// Package identity provides the pure normalization functions the matching
// engine keys on: the deterministic household key and the product-type and
// sub-producer normalizers.
//
// Everything here is total and side-effect free. The household key is used
// only by lead and quote ingestion; sale resolution deliberately never
// derives it, because first-name spellings on sale feeds are too unreliable
// to key on.
package identity
