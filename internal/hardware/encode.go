package hardware

// Scale applies a channel brightness to one color component.
// Brightness 255 leaves v unchanged, 0 turns it off.
func Scale(v, brightness uint8) uint8 {
	return uint8((uint16(v) * (uint16(brightness) + 1)) >> 8)
}

// component returns the byte for one letter of a wire order.
func component(c RawColor, letter byte) uint8 {
	switch letter {
	case 'R':
		return c.R()
	case 'G':
		return c.G()
	case 'B':
		return c.B()
	case 'W':
		return c.W()
	}
	return 0
}

// Encode appends leds to dst in the given wire order with brightness
// applied, one byte per color component. Line inversion is a property of
// the transmitted waveform, not of the color bytes, so it is not applied
// here.
func Encode(dst []byte, leds []RawColor, order StripType, brightness uint8) []byte {
	o := order.Order()
	for _, c := range leds {
		for i := 0; i < len(o); i++ {
			dst = append(dst, Scale(component(c, o[i]), brightness))
		}
	}
	return dst
}

// EncodeChannel encodes a channel's buffer using its own settings.
func EncodeChannel(dst []byte, ch *ChannelConfig) []byte {
	if ch.Count == 0 {
		return dst
	}
	return Encode(dst, ch.Leds[:ch.Count], ch.StripType, ch.Brightness)
}
