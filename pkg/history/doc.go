// Package history keeps a SQLite ledger of downloaded strips.
//
// The files on disk stay the source of truth for resuming; the ledger adds
// what the files cannot tell: the image URL, the run that fetched a strip and
// when. It lives at {save_folder}/.comicdl/history.sqlite unless configured
// otherwise.
package history
