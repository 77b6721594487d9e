// Package signingservice mirrors external e-signature documents inside the
// governance context.
//
// The module consumes finalized decision sheets from the voting engine and
// mirrors each as one document row. A background worker registers the
// document with the provider, with OWNER and ORGANIZER participants, and
// polls until it walks the forward-only CREATED, OWNER_SIGNED,
// ORGANIZER_SIGNED sequence. Once fully
// executed, the signed artifact is copied into the sheet store so the
// download surface can serve it.
package signingservice
