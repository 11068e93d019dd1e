package skill

import "sort"

// Solution bundles several skills with the grants, handoffs and routing that tie them together.
type Solution struct {
	ID       Text
	Name     Text
	Version  Text
	Skills   []*Document
	Grants   []Grant
	Handoffs []Handoff
	Routing  []Channel

	Raw map[string]any
}

// Grant declares which skills issue and consume a grant key.
type Grant struct {
	Index      int
	Key        Text
	IssuedBy   []string
	ConsumedBy []string
}

// Handoff transfers a conversation from one skill to another.
type Handoff struct {
	Index        int
	ID           Text
	From         Text
	To           Text
	GrantsPassed []string
}

// Channel is the routing table of one entry channel.
type Channel struct {
	Name         string
	DefaultSkill Text
	Rules        []RoutingRule
}

// RoutingRule sends matching traffic to a skill, optionally requiring grants.
type RoutingRule struct {
	Index          int
	Skill          Text
	RequiresGrants []string
}

// DecodeSolution builds a Solution from a raw object. Like Decode, it never fails.
// Skill entries that are not objects are skipped here and reported by the schema stage.
func DecodeSolution(raw map[string]any) *Solution {
	if raw == nil {
		raw = map[string]any{}
	}
	s := &Solution{
		ID:      text(raw, "id"),
		Name:    text(raw, "name"),
		Version: text(raw, "version"),
		Raw:     raw,
	}

	skills, _ := list(raw, "skills")
	eachObject(skills, func(i int, m map[string]any) {
		d := Decode(m)
		d.Index = i
		s.Skills = append(s.Skills, d)
	})

	grants, _ := list(raw, "grants")
	eachObject(grants, func(i int, m map[string]any) {
		s.Grants = append(s.Grants, Grant{
			Index:      i,
			Key:        text(m, "key"),
			IssuedBy:   stringList(m, "issued_by"),
			ConsumedBy: stringList(m, "consumed_by"),
		})
	})

	handoffs, _ := list(raw, "handoffs")
	eachObject(handoffs, func(i int, m map[string]any) {
		s.Handoffs = append(s.Handoffs, Handoff{
			Index:        i,
			ID:           text(m, "id"),
			From:         text(m, "from"),
			To:           text(m, "to"),
			GrantsPassed: stringList(m, "grants_passed"),
		})
	})

	if routing, p := object(raw, "routing"); p == Present {
		names := make([]string, 0, len(routing))
		for name := range routing {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			cm, ok := routing[name].(map[string]any)
			if !ok {
				continue
			}
			ch := Channel{Name: name, DefaultSkill: text(cm, "default_skill")}
			rules, _ := list(cm, "rules")
			eachObject(rules, func(i int, rm map[string]any) {
				ch.Rules = append(ch.Rules, RoutingRule{
					Index:          i,
					Skill:          text(rm, "skill"),
					RequiresGrants: stringList(rm, "requires_grants"),
				})
			})
			s.Routing = append(s.Routing, ch)
		}
	}
	return s
}
