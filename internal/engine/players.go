package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"vigilnet/internal/domain"
	"vigilnet/internal/events"
	"vigilnet/internal/store"
)

// HashPassword mirrors the client-side credential digest: lowercase hex
// SHA-256 of the plain password. The server only ever sees the digest.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

func atoiCell(v string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(v))
	return n
}

func heroFromRecord(rec store.Record) domain.Hero {
	return domain.Hero{
		Username:     rec["username"],
		HeroName:     rec["hero_name"],
		Class:        rec["class"],
		Might:        atoiCell(rec["might"]),
		Agility:      atoiCell(rec["agility"]),
		Charm:        atoiCell(rec["charm"]),
		Intuition:    atoiCell(rec["intuition"]),
		Commerce:     atoiCell(rec["commerce"]),
		Intelligence: atoiCell(rec["intelligence"]),
		Followers:    atoiCell(rec["followers"]),
		Bank:         atoiCell(rec["bank"]),
		Authority:    rec["positional_authority"],
		Clout:        atoiCell(rec["clout"]),
		Faction:      rec["faction"],
	}
}

func (e Engine) findPlayer(ctx context.Context, username string) (store.Record, error) {
	rows, err := e.Store.ReadRows(ctx, store.TabPlayers)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if strings.EqualFold(row.Record["username"], username) {
			return row.Record, nil
		}
	}
	return nil, ErrNotFound
}

// RegisterOptions are the fields of a new player signup.
type RegisterOptions struct {
	Username     string
	PasswordHash string
	HeroName     string
	Class        string
	// Skills holds the six base stats by column name; missing skills
	// default to the baseline of 3.
	Skills map[string]int
}

const (
	baselineSkill = 3
	startingBank  = 3000
	bankPerPoint  = 1000
)

func (o RegisterOptions) skill(name string) int {
	if v, ok := o.Skills[name]; ok {
		return v
	}
	return baselineSkill
}

// Register creates a player row with class starting defaults and
// materializes the hero's neutral reputation entries.
func (e Engine) Register(ctx context.Context, opts RegisterOptions) (domain.Hero, error) {
	if opts.Username == "" || opts.PasswordHash == "" || opts.HeroName == "" {
		return domain.Hero{}, invalidf("username, password hash and hero name are required")
	}
	if _, err := e.findPlayer(ctx, opts.Username); err == nil {
		return domain.Hero{}, ErrUsernameTaken
	} else if err != ErrNotFound {
		return domain.Hero{}, err
	}

	defaults := e.Config.ClassDefaultsFor(opts.Class)
	commerce := opts.skill("commerce")
	bank := startingBank
	if commerce > baselineSkill {
		bank += (commerce - baselineSkill) * bankPerPoint
	}

	rec := store.Record{
		"username":             opts.Username,
		"password_hash":        opts.PasswordHash,
		"hero_name":            opts.HeroName,
		"class":                opts.Class,
		"might":                strconv.Itoa(opts.skill("might")),
		"agility":              strconv.Itoa(opts.skill("agility")),
		"charm":                strconv.Itoa(opts.skill("charm")),
		"intuition":            strconv.Itoa(opts.skill("intuition")),
		"commerce":             strconv.Itoa(commerce),
		"intelligence":         strconv.Itoa(opts.skill("intelligence")),
		"followers":            strconv.Itoa(defaults.Followers),
		"bank":                 strconv.Itoa(bank),
		"positional_authority": defaults.Authority,
		"clout":                "0",
		"faction":              "Independent",
	}
	if err := e.Store.AppendRow(ctx, store.TabPlayers, rec); err != nil {
		return domain.Hero{}, err
	}
	if _, err := e.EnsureReputationForPlayer(ctx, opts.HeroName); err != nil {
		return domain.Hero{}, err
	}
	_ = e.Events.Append(ctx, "player.registered", "player", opts.Username, opts.Username, events.EventPayload{
		"hero_name": opts.HeroName,
		"class":     opts.Class,
	})
	return heroFromRecord(rec), nil
}

// Login checks the password digest and returns the character sheet.
// Username matching is case-insensitive; the stored hash is compared
// verbatim and never returned.
func (e Engine) Login(ctx context.Context, username, passwordHash string) (domain.Hero, error) {
	if username == "" || passwordHash == "" {
		return domain.Hero{}, invalidf("username and password hash are required")
	}
	rec, err := e.findPlayer(ctx, username)
	if err == ErrNotFound {
		// Unknown username and wrong password are indistinguishable.
		return domain.Hero{}, ErrBadCredentials
	}
	if err != nil {
		return domain.Hero{}, err
	}
	if rec["password_hash"] != passwordHash {
		return domain.Hero{}, ErrBadCredentials
	}
	return heroFromRecord(rec), nil
}

// Hero returns a player's character sheet by username.
func (e Engine) Hero(ctx context.Context, username string) (domain.Hero, error) {
	if username == "" {
		return domain.Hero{}, invalidf("username is required")
	}
	rec, err := e.findPlayer(ctx, username)
	if err != nil {
		return domain.Hero{}, err
	}
	return heroFromRecord(rec), nil
}
