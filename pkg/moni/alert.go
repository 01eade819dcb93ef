package moni

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/domhub/hubmoni/pkg/config"
	"github.com/domhub/hubmoni/pkg/dor"
)

// Alert conditions.
const (
	CondDORCount  = "unexpected number of DOR cards"
	CondDOMCount  = "unexpected number of DOMs"
	CondPwrCheck  = "DOM power check failure"
	alertVarname  = "alert"
	alertHeader   = "HubMoni alert: "
	descSeparator = "; "
)

type Alert struct {
	Service string     `json:"service"`
	Varname string     `json:"varname"`
	T       string     `json:"t"`
	Prio    int        `json:"prio"`
	Value   AlertValue `json:"value"`
}

type AlertValue struct {
	Condition string    `json:"condition"`
	Desc      string    `json:"desc"`
	Notifies  []Notify  `json:"notifies"`
	Pages     bool      `json:"pages"`
	Vars      AlertVars `json:"vars"`
}

type Notify struct {
	Receiver       string `json:"receiver"`
	NotifiesTxt    string `json:"notifies_txt"`
	NotifiesHeader string `json:"notifies_header"`
}

type AlertVars struct {
	Hubname string `json:"hubname"`
	Cluster string `json:"cluster"`
}

// NewAlert builds an alert for hub with one notification per configured
// receiver.
func NewAlert(cfg *config.HubMoni, hub, cluster, condition, desc string, now time.Time) *Alert {
	a := &Alert{
		Service: cfg.AlertService,
		Varname: alertVarname,
		T:       now.UTC().Format(TimeFormat),
		Prio:    cfg.AlertPriority,
		Value: AlertValue{
			Condition: fmt.Sprintf("%s: %s", hub, condition),
			Pages:     cfg.AlertPages,
			Notifies:  make([]Notify, 0, len(cfg.AlertNotifies)),
			Vars:      AlertVars{Hubname: hub, Cluster: cluster},
		},
	}

	for _, r := range cfg.AlertNotifies {
		a.Value.Notifies = append(a.Value.Notifies, Notify{
			Receiver:       r,
			NotifiesHeader: alertHeader + a.Value.Condition,
		})
	}

	a.setDesc(fmt.Sprintf("%s-%s: %s", cluster, hub, desc))

	return a
}

func (a *Alert) setDesc(desc string) {
	a.Value.Desc = desc
	for i := range a.Value.Notifies {
		a.Value.Notifies[i].NotifiesTxt = desc
	}
}

// Append adds desc to the description unless it is already there.
func (a *Alert) Append(desc string) {
	if strings.Contains(a.Value.Desc, desc) {
		return
	}

	a.setDesc(a.Value.Desc + descSeparator + desc)
}

// Equal compares the parts of two alerts that identify the condition;
// timestamps and routing are ignored.
func (a *Alert) Equal(o *Alert) bool {
	if a == nil || o == nil {
		return a == o
	}

	return a.Value.Condition == o.Value.Condition &&
		a.Value.Desc == o.Value.Desc &&
		a.Value.Vars == o.Value.Vars
}

// ContainsAlert reports whether list holds an alert equal to a.
func ContainsAlert(list []*Alert, a *Alert) bool {
	for _, o := range list {
		if o.Equal(a) {
			return true
		}
	}

	return false
}

// HubView is the part of the driver alerts are computed from.
// *dor.Driver satisfies it.
type HubView interface {
	CommunicatingDOMs() []*dor.DOM
	PluggedDOMs() []*dor.DOM
	Cards() []*dor.Card
}

// Alerts checks the hub against its configured expectations: DOR card
// count, communicating DOM count and unwaived power check failures, in
// that order. Power check failures on several pairs share one alert.
func Alerts(cfg *config.HubMoni, view HubView, hubCfg config.HubConfig, hub, cluster string, now time.Time) ([]*Alert, error) {
	expect, err := hubCfg.Hub(hub, cluster)
	if err != nil {
		return nil, err
	}

	var alerts []*Alert

	comm := view.CommunicatingDOMs()

	if cards := len(view.Cards()); cards != expect.DOR {
		alerts = append(alerts, NewAlert(cfg, hub, cluster, CondDORCount,
			fmt.Sprintf("expected %d DOR cards, found %d", expect.DOR, cards), now))
	}

	if len(comm) != expect.Comm {
		alerts = append(alerts, NewAlert(cfg, hub, cluster, CondDOMCount,
			fmt.Sprintf("expected %d communicating DOMs, found %d", expect.Comm, len(comm)), now))
	}

	var (
		pwr  *Alert
		errs []error
	)

	for _, dom := range view.PluggedDOMs() {
		pc, err := dom.Pair().PowerCheck()
		if err != nil {
			errs = append(errs, err)
			continue
		}

		if pc.OK() || hubCfg.IsWaived(hub, cluster, dom.Card().ID, dom.Pair().ID) {
			continue
		}

		if pwr == nil {
			pwr = NewAlert(cfg, hub, cluster, CondPwrCheck, pc.Text, now)
		} else {
			pwr.Append(pc.Text)
		}
	}

	if pwr != nil {
		alerts = append(alerts, pwr)
	}

	return alerts, errors.Join(errs...)
}
