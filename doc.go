// Package wem converts Audiokinetic Wwise WEM audio into standard Ogg
// Vorbis, without decoding any audio.
//
// Wwise ships Vorbis streams inside a RIFF container with a stripped-down
// bitstream: the codebooks are packed or externalized, the three Vorbis
// header packets are reduced to a compact setup blob, and the per-packet
// window adjacency bits are omitted. This package reconstructs, bit for
// bit, the stream a compliant Vorbis encoder would have produced, so the
// result plays in any Vorbis decoder.
//
// # Basic Usage
//
//	in, err := os.Open("music.wem")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer in.Close()
//
//	st, _ := in.Stat()
//	f, err := wem.Open(in, st.Size(), wem.Options{
//	    Codebooks: "packed_codebooks.bin",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	out, err := os.Create("music.ogg")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer out.Close()
//
//	if err := f.GenerateOgg(out); err != nil {
//	    log.Fatal(err)
//	}
//
// Most WEM files reference an external packed codebook library
// (packed_codebooks.bin, shipped with the game's authoring tool); files
// carrying their own codebooks are handled with Options.InlineCodebooks and
// Options.FullSetup instead.
//
// # What Is Not Supported
//
// Containers using the full Vorbis header triad (vorb chunk sizes 0x28 and
// 0x2C) are detected and rejected. No PCM is ever produced; the compressed
// packets are repacked unchanged.
//
// # Thread Safety
//
// File instances are NOT safe for concurrent use; each conversion owns its
// input and output streams exclusively. Separate conversions share nothing.
//
// # Reference
//
// Ported from ww2ogg: https://github.com/hcs64/ww2ogg
package wem
