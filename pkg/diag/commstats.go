package diag

// CommStats is one parsed read of a DOM's comstat file. Values are never
// mutated after parsing; compare two reads with Diff.
type CommStats struct {
	Card int
	Pair int
	DOM  byte

	RXBytes int64
	RXMsgs  int64
	InQ     int
	RXPkts  int64
	RXAcks  int64
	BadPkt  int
	BadHdr  int
	BadSeq  int
	RXCtrl  int
	RXCI    int64
	RXIC    int64
	TXBytes int64
	TXMsgs  int64
	OutQ    int
	Resent  int
	TXPkts  int64
	TXAcks  int64
	NackQ   int // the driver can report this negative; kept as is
	NRetxB  int
	RetxB   int
	NRetxQ  int
	TXCtrl  int
	TXCI    int64
	TXIC    int64

	Connects   int
	HWTimeouts int

	Open      bool
	Connected bool

	RXFIFO    string
	TXFIFO    string
	DOMRXFIFO string
}

// CommStatsDelta holds counter changes between two comstat reads.
type CommStatsDelta struct {
	RXBytes int64
	TXBytes int64
	BadPkt  int
	NRetxB  int
	Resent  int
}

var commStatsGrammar = newGrammar("comstat", "ms", "",
	rule[CommStats]{"card", `/dev/dhc`, `\d`, intField(func(c *CommStats) *int { return &c.Card })},
	rule[CommStats]{"pair", `w`, `\d`, intField(func(c *CommStats) *int { return &c.Pair })},
	rule[CommStats]{"dom", `d`, `\w`, byteField(func(c *CommStats) *byte { return &c.DOM })},

	rule[CommStats]{"rx_bytes", `\s*RX:\s*`, `\d+`, int64Field(func(c *CommStats) *int64 { return &c.RXBytes })},
	rule[CommStats]{"rx_msgs", `B,\s*MSGS=`, `\d+`, int64Field(func(c *CommStats) *int64 { return &c.RXMsgs })},
	rule[CommStats]{"ninq", `\s*NINQ=`, `\d+`, intField(func(c *CommStats) *int { return &c.InQ })},
	rule[CommStats]{"rx_pkts", `\s*PKTS=`, `\d+`, int64Field(func(c *CommStats) *int64 { return &c.RXPkts })},
	rule[CommStats]{"rx_acks", `\s*ACKS=`, `\d+`, int64Field(func(c *CommStats) *int64 { return &c.RXAcks })},
	rule[CommStats]{"badpkt", `\s*BADPKT=`, `\d+`, intField(func(c *CommStats) *int { return &c.BadPkt })},
	rule[CommStats]{"badhdr", `\s*BADHDR=`, `\d+`, intField(func(c *CommStats) *int { return &c.BadHdr })},
	rule[CommStats]{"badseq", `\s*BADSEQ=`, `\d+`, intField(func(c *CommStats) *int { return &c.BadSeq })},
	rule[CommStats]{"rx_nctrl", `\s*NCTRL=`, `\d+`, intField(func(c *CommStats) *int { return &c.RXCtrl })},
	rule[CommStats]{"rx_nci", `\s*NCI=`, `\d+`, int64Field(func(c *CommStats) *int64 { return &c.RXCI })},
	rule[CommStats]{"rx_nic", `\s*NIC=`, `\d+`, int64Field(func(c *CommStats) *int64 { return &c.RXIC })},

	rule[CommStats]{"tx_bytes", `\s*TX:\s*`, `\d+`, int64Field(func(c *CommStats) *int64 { return &c.TXBytes })},
	rule[CommStats]{"tx_msgs", `B,\s*MSGS=`, `\d+`, int64Field(func(c *CommStats) *int64 { return &c.TXMsgs })},
	rule[CommStats]{"noutq", `\s*NOUTQ=`, `\d+`, intField(func(c *CommStats) *int { return &c.OutQ })},
	rule[CommStats]{"resent", `\s*RESENT=`, `\d+`, intField(func(c *CommStats) *int { return &c.Resent })},
	rule[CommStats]{"tx_pkts", `\s*PKTS=`, `\d+`, int64Field(func(c *CommStats) *int64 { return &c.TXPkts })},
	rule[CommStats]{"tx_acks", `\s*ACKS=`, `\d+`, int64Field(func(c *CommStats) *int64 { return &c.TXAcks })},
	rule[CommStats]{"nackq", `\s*NACKQ=`, `-?\d+`, intField(func(c *CommStats) *int { return &c.NackQ })},
	rule[CommStats]{"nretxb", `\s*NRETXB=`, `\d+`, intField(func(c *CommStats) *int { return &c.NRetxB })},
	rule[CommStats]{"retxb_bytes", `\s*RETXB_BYTES=`, `\d+`, intField(func(c *CommStats) *int { return &c.RetxB })},
	rule[CommStats]{"nretxq", `\s*NRETXQ=`, `\d+`, intField(func(c *CommStats) *int { return &c.NRetxQ })},
	rule[CommStats]{"tx_nctrl", `\s*NCTRL=`, `\d+`, intField(func(c *CommStats) *int { return &c.TXCtrl })},
	rule[CommStats]{"tx_nci", `\s*NCI=`, `\d+`, int64Field(func(c *CommStats) *int64 { return &c.TXCI })},
	rule[CommStats]{"tx_nic", `\s*NIC=`, `\d+`, int64Field(func(c *CommStats) *int64 { return &c.TXIC })},

	rule[CommStats]{"nconnects", `\s*NCONNECTS=`, `\d+`, intField(func(c *CommStats) *int { return &c.Connects })},
	rule[CommStats]{"nhdwrtimeouts", `\s*NHDWRTIMEOUTS=`, `\d+`, intField(func(c *CommStats) *int { return &c.HWTimeouts })},
	rule[CommStats]{"open", `\s*OPEN=`, `\S+`, flagField("true", func(c *CommStats) *bool { return &c.Open })},
	rule[CommStats]{"connected", `\s*CONNECTED=`, `\S+`, flagField("true", func(c *CommStats) *bool { return &c.Connected })},
	rule[CommStats]{"rxfifo", `\s*RXFIFO=`, `.+?`, stringField(func(c *CommStats) *string { return &c.RXFIFO })},
	rule[CommStats]{"txfifo", ` TXFIFO=`, `.+?`, stringField(func(c *CommStats) *string { return &c.TXFIFO })},
	rule[CommStats]{"dom_rxfifo", ` DOM_RXFIFO=`, `\S+`, stringField(func(c *CommStats) *string { return &c.DOMRXFIFO })},
)

// ParseCommStats parses the text of a DOM comstat file.
func ParseCommStats(text string) (*CommStats, error) {
	return commStatsGrammar.parse(text)
}

// CommStatsPattern is the expression compiled from the comstat field table.
func CommStatsPattern() string {
	return commStatsGrammar.Pattern()
}

// CWD returns the card/pair/DOM coordinate the driver printed in the header.
func (c *CommStats) CWD() string {
	return string([]byte{byte('0' + c.Card), byte('0' + c.Pair), c.DOM})
}

// Diff returns the counter changes from prev to c.
func (c *CommStats) Diff(prev *CommStats) CommStatsDelta {
	return CommStatsDelta{
		RXBytes: c.RXBytes - prev.RXBytes,
		TXBytes: c.TXBytes - prev.TXBytes,
		BadPkt:  c.BadPkt - prev.BadPkt,
		NRetxB:  c.NRetxB - prev.NRetxB,
		Resent:  c.Resent - prev.Resent,
	}
}
