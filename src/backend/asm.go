package backend

import "vslc/src/util"

// ----------------------------
// ----- Type definitions -----
// ----------------------------


// ---------------------
// ----- Constants -----
// ---------------------


// -------------------
// ----- Globals -----
// -------------------


// ---------------------
// ----- Functions -----
// ---------------------

// GenerateAssembler is an empty entry point: it ignores opt, generates no
// assembler code and always returns nil.
func GenerateAssembler(opt util.Options) error {
	return nil
}
