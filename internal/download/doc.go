// Package download streams PDF candidates to local storage with a byte
// ceiling and incremental content hashing. Truncated downloads are reported
// distinctly from complete ones: the hash is only ever returned for a fully
// stored stream.
package download
