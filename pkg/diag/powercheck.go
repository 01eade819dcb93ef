package diag

// PowerCheck is one parsed read of a wire pair's pwr_check file.
type PowerCheck struct {
	Card int
	Pair int

	Plugged       bool
	CurrentLowOK  bool
	CurrentHighOK bool
	VoltageLowOK  bool
	VoltageHighOK bool

	// Text is the trimmed source line, quoted verbatim in alerts.
	Text string
}

var powerCheckGrammar = newGrammar("pwr_check", "", `\)`,
	rule[PowerCheck]{"card", `Card\s*`, `\d`, intField(func(p *PowerCheck) *int { return &p.Card })},
	rule[PowerCheck]{"pair", `\s*pair\s*`, `\d`, intField(func(p *PowerCheck) *int { return &p.Pair })},
	rule[PowerCheck]{"plugged", `\s*pwr check:\s*plugged\(`, `\w+`, flagField("ok", func(p *PowerCheck) *bool { return &p.Plugged })},
	rule[PowerCheck]{"current_lo", `\)\s*current\(`, `\w+`, flagField("ok", func(p *PowerCheck) *bool { return &p.CurrentLowOK })},
	rule[PowerCheck]{"current_hi", `,\s*`, `\w+`, flagField("ok", func(p *PowerCheck) *bool { return &p.CurrentHighOK })},
	rule[PowerCheck]{"voltage_lo", `\)\s*voltage\(`, `\w+`, flagField("ok", func(p *PowerCheck) *bool { return &p.VoltageLowOK })},
	rule[PowerCheck]{"voltage_hi", `,\s*`, `\w+`, flagField("ok", func(p *PowerCheck) *bool { return &p.VoltageHighOK })},
)

// ParsePowerCheck parses the text of a wire pair pwr_check file.
func ParsePowerCheck(text string) (*PowerCheck, error) {
	p, err := powerCheckGrammar.parse(text)
	if err != nil {
		return nil, err
	}

	p.Text = trimLine(text)

	return p, nil
}

// PowerCheckPattern is the expression compiled from the pwr_check field table.
func PowerCheckPattern() string {
	return powerCheckGrammar.Pattern()
}

// OK reports whether every electrical test passed.
func (p *PowerCheck) OK() bool {
	return p.Plugged &&
		p.CurrentLowOK && p.CurrentHighOK &&
		p.VoltageLowOK && p.VoltageHighOK
}
