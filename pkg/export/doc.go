// Package export turns a rendered report document into a shareable image.
//
// The bitmap itself comes from a Capturer (an external renderer). The
// resulting file is offered to a Sharer when one accepts it and is otherwise
// written to the download directory under a dated file name.
package export
