package diag

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const comstat00A = `/dev/dhc0w0dA
 RX: 26288504B, MSGS=2629 NINQ=0 PKTS=9391 ACKS=478
     BADPKT=0 BADHDR=0 BADSEQ=0 NCTRL=0 NCI=2 NIC=0
 TX: 36828B, MSGS=2629 NOUTQ=0 RESENT=0 PKTS=26566 ACKS=26566
     NACKQ=0 NRETXB=0 RETXB_BYTES=0 NRETXQ=0 NCTRL=0 NCI=0 NIC=2
     NCONNECTS=1 NHDWRTIMEOUTS=0 OPEN=true CONNECTED=true
     RXFIFO=empty TXFIFO=empty,almost empty DOM_RXFIFO=not-full
`

func TestParseCommStats(t *testing.T) {
	c, err := ParseCommStats(comstat00A)
	require.NoError(t, err)

	assert.Equal(t, 0, c.Card)
	assert.Equal(t, 0, c.Pair)
	assert.Equal(t, byte('A'), c.DOM)
	assert.Equal(t, "00A", c.CWD())
	assert.Equal(t, int64(26288504), c.RXBytes)
	assert.Equal(t, int64(478), c.RXAcks)
	assert.Equal(t, int64(2), c.RXCI)
	assert.Equal(t, int64(36828), c.TXBytes)
	assert.Equal(t, int64(26566), c.TXAcks)
	assert.Equal(t, int64(2), c.TXIC)
	assert.Equal(t, 0, c.NRetxB)
	assert.Equal(t, 1, c.Connects)
	assert.True(t, c.Open)
	assert.True(t, c.Connected)
	assert.Equal(t, "empty", c.RXFIFO)
	assert.Equal(t, "empty,almost empty", c.TXFIFO)
	assert.Equal(t, "not-full", c.DOMRXFIFO)
}

func TestParseCommStats_NegativeNackQ(t *testing.T) {
	text := strings.Replace(comstat00A, "NACKQ=0", "NACKQ=-3", 1)

	c, err := ParseCommStats(text)
	require.NoError(t, err)
	assert.Equal(t, -3, c.NackQ)
}

func TestParseCommStats_Malformed(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "empty", text: ""},
		{name: "missing badpkt", text: strings.Replace(comstat00A, "BADPKT=0 ", "", 1)},
		{name: "missing header", text: strings.Replace(comstat00A, "/dev/dhc0w0dA", "", 1)},
		{name: "missing dom rxfifo", text: strings.Replace(comstat00A, " DOM_RXFIFO=not-full", "", 1)},
		{name: "negative rx bytes", text: strings.Replace(comstat00A, "RX: 26288504B", "RX: -1B", 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := ParseCommStats(tt.text)
			require.Error(t, err)
			assert.Nil(t, c)
			assert.ErrorIs(t, err, ErrMalformedDiagnosticText)

			var mte *MalformedTextError
			require.True(t, errors.As(err, &mte))
			assert.Equal(t, "comstat", mte.Kind)
			assert.Equal(t, tt.text, mte.Text)
		})
	}
}

func TestCommStats_Diff(t *testing.T) {
	prev, err := ParseCommStats(comstat00A)
	require.NoError(t, err)

	next, err := ParseCommStats(strings.NewReplacer(
		"BADPKT=0", "BADPKT=8",
		"NRETXB=0", "NRETXB=3",
		"RX: 26288504B", "RX: 26288604B",
	).Replace(comstat00A))
	require.NoError(t, err)

	d := next.Diff(prev)
	assert.Equal(t, 8, d.BadPkt)
	assert.Equal(t, 3, d.NRetxB)
	assert.Equal(t, int64(100), d.RXBytes)
	assert.Equal(t, int64(0), d.TXBytes)

	// the source snapshot is untouched
	assert.Equal(t, 0, prev.BadPkt)
}

const pwrCheckOK = "Card 0 pair 0 pwr check: plugged(ok) current(ok,ok) voltage(ok,ok)\n"

func TestParsePowerCheck(t *testing.T) {
	p, err := ParsePowerCheck(pwrCheckOK)
	require.NoError(t, err)

	assert.Equal(t, 0, p.Card)
	assert.Equal(t, 0, p.Pair)
	assert.True(t, p.Plugged)
	assert.True(t, p.CurrentLowOK)
	assert.True(t, p.CurrentHighOK)
	assert.True(t, p.VoltageLowOK)
	assert.True(t, p.VoltageHighOK)
	assert.True(t, p.OK())
	assert.Equal(t, strings.TrimSpace(pwrCheckOK), p.Text)
}

func TestParsePowerCheck_SingleFailure(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		check func(p *PowerCheck) bool
	}{
		{
			name:  "unplugged",
			text:  "Card 1 pair 3 pwr check: plugged(ERR_NOT_PLUGGED) current(ok,ok) voltage(ok,ok)",
			check: func(p *PowerCheck) bool { return p.Plugged },
		},
		{
			name:  "current low",
			text:  "Card 1 pair 3 pwr check: plugged(ok) current(ERR_CURRENT_BELOW_LIMITS,ok) voltage(ok,ok)",
			check: func(p *PowerCheck) bool { return p.CurrentLowOK },
		},
		{
			name:  "current high",
			text:  "Card 1 pair 3 pwr check: plugged(ok) current(ok,ERR_CURRENT_ABOVE_LIMITS) voltage(ok,ok)",
			check: func(p *PowerCheck) bool { return p.CurrentHighOK },
		},
		{
			name:  "voltage low",
			text:  "Card 1 pair 3 pwr check: plugged(ok) current(ok,ok) voltage(ERR_VOLTAGE_BELOW_LIMITS,ok)",
			check: func(p *PowerCheck) bool { return p.VoltageLowOK },
		},
		{
			name:  "voltage high",
			text:  "Card 1 pair 3 pwr check: plugged(ok) current(ok,ok) voltage(ok,ERR_VOLTAGE_ABOVE_LIMITS)",
			check: func(p *PowerCheck) bool { return p.VoltageHighOK },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParsePowerCheck(tt.text)
			require.NoError(t, err)

			assert.Equal(t, 1, p.Card)
			assert.Equal(t, 3, p.Pair)
			assert.False(t, tt.check(p))
			assert.False(t, p.OK())

			passed := 0
			for _, ok := range []bool{p.Plugged, p.CurrentLowOK, p.CurrentHighOK, p.VoltageLowOK, p.VoltageHighOK} {
				if ok {
					passed++
				}
			}
			assert.Equal(t, 4, passed)
		})
	}
}

func TestParsePowerCheck_Malformed(t *testing.T) {
	for _, text := range []string{
		"",
		"Card 0 pair 0 pwr check: plugged(ok) current(ok,ok)",
		"garbage",
	} {
		_, err := ParsePowerCheck(text)
		assert.ErrorIs(t, err, ErrMalformedDiagnosticText, "text %q", text)
	}
}

func TestPatternsFollowFieldOrder(t *testing.T) {
	p := CommStatsPattern()
	assert.Less(t, strings.Index(p, "NACKQ"), strings.Index(p, "NRETXB"))
	assert.Less(t, strings.Index(p, "RXFIFO"), strings.Index(p, "TXFIFO"))
	assert.Contains(t, PowerCheckPattern(), `voltage\(`)
}
