// Package audio classifies a song's stored audio reference into an embeddable player.
//
// [Classify] maps an [models.AudioReference] onto one of the [Variant] values and extracts the
// provider identifier needed to build the embed target:
//
//   - [YouTube] : video ID from youtu.be, watch?v= or embed/ links (exactly 11 characters)
//   - [GoogleDrive] : file ID from /file/d/, /d/ or id= links
//   - [SoundCloud] : the whole URL passed to the SoundCloud widget
//   - [DirectFile] : stored data URLs and any other link, played as-is
//
// Extraction never fails loudly. A link without a usable identifier yields an [Embed] whose
// Err wraps [shared.ErrInvalidLink], and presenters render an "invalid link" state instead.
package audio
