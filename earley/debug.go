package earley

func dumpPosition(c *Chart, pos int) {
	tracer().Debugf("--- Position %04d ------------------------------------", pos)
	if tok, i := c.Token(pos); tok != nil {
		tracer().Debugf("     next token #%d = %q", i, tok.Lexeme())
	}
	for n, s := range c.States(pos) {
		fw, _ := c.ForwardScore(s)
		in, _ := c.InnerScore(s)
		tracer().Debugf("[%2d] %s   α=%.4g γ=%.4g", n+1, s, fw, in)
	}
}

// Dump traces all chart positions at debug level.
func (c *Chart) Dump() {
	for pos := 0; pos < c.Size(); pos++ {
		dumpPosition(c, pos)
	}
}
