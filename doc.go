// Package arkiv opens zip and tar archives, optionally compressed with gzip, xz,
// bzip2 or zstandard, behind one [Archive] type.
//
// The format is chosen from the file name suffix (see [InferFormat] and [Resolver]),
// the content is never sniffed. An [Archive] can be opened from a local path with
// [Open], from a stream with [OpenReader] or from a remote location with [Download].
// Entries are listed lazily with [Archive.Entries] and written to disk with
// [Archive.Unpack], which refuses entries that would escape the destination.
//
// All behavior is adjusted with a [Config] built from [ConfigOption] values.
// Failures are classified by the sentinel errors in this package, use
// [errors.Is] to test for them.
package arkiv
