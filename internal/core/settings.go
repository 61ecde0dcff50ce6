package core

// Settings is the serializable form of a Parser configuration, without the
// filename. Empty fields mean "not configured".
type Settings struct {
	Separator string            `json:"separator"`
	Escape    string            `json:"escape,omitempty"`
	Strip     []string          `json:"strip,omitempty"`
	Replace   map[string]string `json:"replace,omitempty"`
}

// Merge returns s with every empty field taken from defaults.
func (s Settings) Merge(defaults Settings) Settings {
	out := s
	if out.Separator == "" {
		out.Separator = defaults.Separator
	}
	if out.Escape == "" {
		out.Escape = defaults.Escape
	}
	if len(out.Strip) == 0 {
		out.Strip = defaults.Strip
	}
	if len(out.Replace) == 0 {
		out.Replace = defaults.Replace
	}
	return out
}

// Apply configures p from s. Empty fields are left untouched; the first
// invalid field aborts with that field's error kind.
func (p *Parser) Apply(s Settings) error {
	if s.Separator != "" {
		if err := p.SetSeparator(s.Separator); err != nil {
			return err
		}
	}
	if s.Escape != "" {
		if err := p.SetEscape(s.Escape); err != nil {
			return err
		}
	}
	if len(s.Strip) > 0 {
		if err := p.SetStripChars(s.Strip); err != nil {
			return err
		}
	}
	if len(s.Replace) > 0 {
		if err := p.SetReplaceChars(s.Replace); err != nil {
			return err
		}
	}
	return nil
}

// Settings returns the current configuration.
func (p *Parser) Settings() Settings {
	var s Settings
	s.Separator, _ = p.Separator()
	s.Escape, _ = p.Escape()
	s.Strip, _ = p.StripChars()
	s.Replace, _ = p.ReplaceChars()
	return s
}
