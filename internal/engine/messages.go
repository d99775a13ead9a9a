package engine

import (
	"context"
	"sort"
	"strings"

	"vigilnet/internal/domain"
	"vigilnet/internal/store"
)

func messageFromRecord(rec store.Record) domain.Message {
	return domain.Message{
		From:      rec["from_name"],
		To:        rec["to_name"],
		Body:      rec["body"],
		Timestamp: rec["timestamp"],
		CycleID:   rec["cycle_id"],
	}
}

// SendMessage appends one message stamped with the wall clock and the
// current cycle coordinate.
func (e Engine) SendMessage(ctx context.Context, from, to, body string) (domain.Message, error) {
	if from == "" || to == "" || body == "" {
		return domain.Message{}, invalidf("from, to and body are required")
	}
	cycleID, err := e.CurrentCycleID(ctx)
	if err != nil {
		return domain.Message{}, err
	}
	msg := domain.Message{
		From:      from,
		To:        to,
		Body:      body,
		Timestamp: e.now().Format(postTimeLayout),
		CycleID:   cycleID,
	}
	err = e.Store.AppendRow(ctx, store.TabMessages, store.Record{
		"from_name": msg.From,
		"to_name":   msg.To,
		"body":      msg.Body,
		"timestamp": msg.Timestamp,
		"cycle_id":  msg.CycleID,
	})
	if err != nil {
		return domain.Message{}, err
	}
	return msg, nil
}

// Inbox groups a hero's messages into one thread per counterpart, most
// recently active first.
func (e Engine) Inbox(ctx context.Context, heroName string) ([]domain.Thread, error) {
	if heroName == "" {
		return nil, invalidf("hero name is required")
	}
	rows, err := e.Store.ReadRows(ctx, store.TabMessages)
	if err != nil {
		return nil, err
	}
	byContact := map[string]*domain.Thread{}
	var order []string
	for _, row := range rows {
		msg := messageFromRecord(row.Record)
		var contact string
		switch {
		case strings.EqualFold(msg.From, heroName):
			contact = msg.To
		case strings.EqualFold(msg.To, heroName):
			contact = msg.From
		default:
			continue
		}
		t, ok := byContact[contact]
		if !ok {
			t = &domain.Thread{Contact: contact}
			byContact[contact] = t
			order = append(order, contact)
		}
		// Store order is append order, so the last seen message is the
		// latest one.
		t.Latest = msg
		t.Count++
	}
	threads := make([]domain.Thread, 0, len(order))
	for _, contact := range order {
		threads = append(threads, *byContact[contact])
	}
	sort.SliceStable(threads, func(i, j int) bool {
		return threads[i].Latest.Timestamp > threads[j].Latest.Timestamp
	})
	return threads, nil
}

// Thread returns the conversation between a hero and one contact, oldest
// first.
func (e Engine) Thread(ctx context.Context, heroName, contactName string) ([]domain.Message, error) {
	if heroName == "" || contactName == "" {
		return nil, invalidf("hero name and contact name are required")
	}
	rows, err := e.Store.ReadRows(ctx, store.TabMessages)
	if err != nil {
		return nil, err
	}
	var msgs []domain.Message
	for _, row := range rows {
		msg := messageFromRecord(row.Record)
		between := (strings.EqualFold(msg.From, heroName) && strings.EqualFold(msg.To, contactName)) ||
			(strings.EqualFold(msg.From, contactName) && strings.EqualFold(msg.To, heroName))
		if between {
			msgs = append(msgs, msg)
		}
	}
	return msgs, nil
}

// Contacts lists a hero's saved contact names in store order.
func (e Engine) Contacts(ctx context.Context, heroName string) ([]string, error) {
	if heroName == "" {
		return nil, invalidf("hero name is required")
	}
	rows, err := e.Store.ReadRows(ctx, store.TabContacts)
	if err != nil {
		return nil, err
	}
	var contacts []string
	for _, row := range rows {
		if strings.EqualFold(row.Record["hero_name"], heroName) {
			contacts = append(contacts, row.Record["contact_name"])
		}
	}
	return contacts, nil
}

// AddContact saves a contact once; re-adding an existing one is a no-op.
func (e Engine) AddContact(ctx context.Context, heroName, contactName string) error {
	if heroName == "" || contactName == "" {
		return invalidf("hero name and contact name are required")
	}
	existing, err := e.Contacts(ctx, heroName)
	if err != nil {
		return err
	}
	for _, c := range existing {
		if strings.EqualFold(c, contactName) {
			return nil
		}
	}
	return e.Store.AppendRow(ctx, store.TabContacts, store.Record{
		"hero_name":    heroName,
		"contact_name": contactName,
	})
}
