package miner

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcutil/base58"
	"golang.org/x/crypto/ripemd160"
	"gopkg.in/yaml.v3"
)

// DefaultCooldown is the per-account cooldown in seconds when none is
// configured.
const DefaultCooldown = 2400

// Account is one configured mining identity. The list is loaded once at
// startup and read-only afterwards; the first account is the fee payer and
// never mines.
type Account struct {
	Name     string `yaml:"name"`
	Key      string `yaml:"key"`
	Cooldown int    `yaml:"cooldown"`
}

// CooldownDuration returns the account's cooldown as a duration.
func (a Account) CooldownDuration() time.Duration {
	return time.Duration(a.Cooldown) * time.Second
}

// LoadAccounts reads the account list from the named environment variable
// if set, otherwise from the given file. The fee payer is the first entry.
func LoadAccounts(envVar, path string, elog *EventLog) ([]Account, error) {
	if envVar != "" {
		if raw := os.Getenv(envVar); raw != "" {
			elog.Add(SystemAccount, "Loading accounts from environment", LevelInfo)
			return finishLoad(ParseAccounts(raw), elog)
		}
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read accounts file: %w", err)
		}
		elog.Add(SystemAccount, "Loading accounts from "+path, LevelInfo)
		return finishLoad(ParseAccounts(string(raw)), elog)
	}
	return nil, errors.New("no account source configured")
}

func finishLoad(accounts []Account, elog *EventLog) ([]Account, error) {
	if len(accounts) == 0 {
		return nil, errors.New("no accounts found")
	}
	for _, a := range accounts {
		if err := ValidateKey(a.Key); err != nil {
			elog.Add(SystemAccount, fmt.Sprintf("Key for %s looks invalid: %v", a.Name, err), LevelWarn)
		}
	}
	elog.Add(SystemAccount, fmt.Sprintf("Loaded %d accounts, fee payer: %s", len(accounts), accounts[0].Name), LevelSuccess)
	return accounts, nil
}

// ParseAccounts parses any of the accepted list forms: a YAML document with
// an accounts list, comma-separated name:key[:cooldown] records, or one
// name key [cooldown] entry per line (BOT_CONFIG= prefixes and # comments
// tolerated).
func ParseAccounts(raw string) []Account {
	if accounts, ok := parseYAMLAccounts(raw); ok {
		return accounts
	}
	if strings.Contains(raw, ":") && strings.Contains(raw, ",") {
		return parseDelimited(raw)
	}
	return parseLines(raw)
}

func parseYAMLAccounts(raw string) ([]Account, bool) {
	if !strings.Contains(raw, "accounts:") {
		return nil, false
	}
	var doc struct {
		Accounts []Account `yaml:"accounts"`
	}
	if err := yaml.Unmarshal([]byte(raw), &doc); err != nil || len(doc.Accounts) == 0 {
		return nil, false
	}
	out := doc.Accounts[:0]
	for _, a := range doc.Accounts {
		if a.Name == "" || a.Key == "" {
			continue
		}
		if a.Cooldown <= 0 {
			a.Cooldown = DefaultCooldown
		}
		out = append(out, a)
	}
	return out, len(out) > 0
}

func parseDelimited(raw string) []Account {
	var accounts []Account
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, ":")
		if len(parts) < 2 {
			continue
		}
		accounts = append(accounts, Account{
			Name:     strings.TrimSpace(parts[0]),
			Key:      strings.TrimSpace(parts[1]),
			Cooldown: parseCooldown(parts[2:]),
		})
	}
	return accounts
}

func parseLines(raw string) []Account {
	var accounts []Account
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "BOT_CONFIG=")
		parts := strings.Fields(line)
		if len(parts) < 2 {
			continue
		}
		accounts = append(accounts, Account{
			Name:     parts[0],
			Key:      parts[1],
			Cooldown: parseCooldown(parts[2:]),
		})
	}
	return accounts
}

// parseCooldown reads an optional cooldown field, tolerating a trailing
// "s". Malformed values keep the default.
func parseCooldown(rest []string) int {
	if len(rest) == 0 {
		return DefaultCooldown
	}
	v, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(rest[0]), "s"))
	if err != nil || v <= 0 {
		return DefaultCooldown
	}
	return v
}

// ValidateKey checks a private key's base58 checksum. Both the legacy WIF
// form (double-SHA256 checksum) and the PVT_K1 form (RIPEMD-160 over
// payload plus curve suffix) are accepted. Validation failures are
// advisory: the signing service is the final authority.
func ValidateKey(key string) error {
	switch {
	case strings.HasPrefix(key, "PVT_K1_"):
		data := base58.Decode(strings.TrimPrefix(key, "PVT_K1_"))
		if len(data) < 5 {
			return errors.New("key too short")
		}
		payload, sum := data[:len(data)-4], data[len(data)-4:]
		h := ripemd160.New()
		h.Write(payload)
		h.Write([]byte("K1"))
		if !bytes.Equal(h.Sum(nil)[:4], sum) {
			return errors.New("bad checksum")
		}
	case strings.HasPrefix(key, "5"):
		data := base58.Decode(key)
		if len(data) != 37 {
			return errors.New("key too short")
		}
		if data[0] != 0x80 {
			return errors.New("bad version byte")
		}
		first := sha256.Sum256(data[:33])
		second := sha256.Sum256(first[:])
		if !bytes.Equal(second[:4], data[33:]) {
			return errors.New("bad checksum")
		}
	default:
		return errors.New("unrecognized key format")
	}
	return nil
}
