package usecase

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/anaygoyal09/Focus/internal/domain"
)

const (
	// DefaultPassphrase unlocks an extension until the user sets their own.
	DefaultPassphrase = "iamthinkingtwice"

	passphraseSecret = "extension_passphrase_bcrypt"
)

// PassphraseGate guards extensions behind a passphrase stored as a bcrypt hash.
type PassphraseGate struct {
	secrets domain.SecretStore
	cost    int
}

// NewPassphraseGate creates a gate backed by secrets.
func NewPassphraseGate(secrets domain.SecretStore) *PassphraseGate {
	return &PassphraseGate{secrets: secrets, cost: bcrypt.DefaultCost}
}

// Verify returns ErrWrongPassphrase unless passphrase matches. Input is
// compared as typed except for surrounding whitespace.
func (g *PassphraseGate) Verify(passphrase string) error {
	hash, err := g.hash()
	if err != nil {
		return err
	}
	err = bcrypt.CompareHashAndPassword(hash, []byte(strings.TrimSpace(passphrase)))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return domain.ErrWrongPassphrase
	}
	return err
}

// Set replaces the passphrase after verifying the current one.
func (g *PassphraseGate) Set(current, next string) error {
	if err := g.Verify(current); err != nil {
		return err
	}
	next = strings.TrimSpace(next)
	if next == "" {
		return fmt.Errorf("new passphrase is empty: %w", domain.ErrInvalidArgument)
	}
	return g.store(next)
}

// hash returns the stored hash, seeding the default passphrase on first use.
func (g *PassphraseGate) hash() ([]byte, error) {
	stored, err := g.secrets.GetSecret(passphraseSecret)
	if err == nil {
		return []byte(stored), nil
	}
	if !errors.Is(err, domain.ErrSecretNotFound) {
		return nil, fmt.Errorf("failed to read passphrase: %w", err)
	}
	if err := g.store(DefaultPassphrase); err != nil {
		return nil, err
	}
	stored, err = g.secrets.GetSecret(passphraseSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to read passphrase: %w", err)
	}
	return []byte(stored), nil
}

func (g *PassphraseGate) store(passphrase string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(passphrase), g.cost)
	if err != nil {
		return fmt.Errorf("failed to hash passphrase: %w", err)
	}
	if err := g.secrets.SetSecret(passphraseSecret, string(hash)); err != nil {
		return fmt.Errorf("failed to store passphrase: %w", err)
	}
	return nil
}
