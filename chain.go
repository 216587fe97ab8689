package tip

// TipChain is the upward link threaded through nested tooltip-owning regions.
// Each controller builds a link closing over "pin me" and hands it to the
// controllers mounted inside its tooltip content. Pinning the innermost
// region then walks the whole chain so every ancestor tooltip stays open.
//
// A nil *TipChain is the valid root of a chain: Pin on it is a no-op.
type TipChain struct {
	parent *TipChain
	pin    func()
}

// NewTipChain builds a link that pins via pin and then continues up through
// parent. parent may be nil at the top of a chain.
func NewTipChain(parent *TipChain, pin func()) *TipChain {
	return &TipChain{parent: parent, pin: pin}
}

// Pin pins the owner of this link and every link above it. The walk is
// explicit rather than relying on each ancestor's own transition to continue
// the cascade, so an already-pinned ancestor in the middle does not stop it.
func (c *TipChain) Pin() {
	for link := c; link != nil; link = link.parent {
		if link.pin != nil {
			link.pin()
		}
	}
}
