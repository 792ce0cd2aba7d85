// Package address turns a postcode and house number into the bag id the
// calendar service knows the household by.
package address

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/klabast/wb-services/ophaaldagen/internal/huisvuil"
)

var (
	// ErrAddressNotFound means the calendar service knows no address at the
	// postcode and house number
	ErrAddressNotFound = errors.New("address not found")
	// ErrNoMatchingLetter means no candidate carries the chosen house letter
	ErrNoMatchingLetter = errors.New("no address with that house letter")
	// ErrInvalidPostcode is returned before any request is made
	ErrInvalidPostcode = errors.New("invalid postcode, expected 4 digits and 2 letters")
	// ErrInvalidHouseNumber is returned before any request is made
	ErrInvalidHouseNumber = errors.New("invalid house number, expected a positive integer")
	// ErrLetterRequired means several house letters exist and no way to pick
	// one was given
	ErrLetterRequired = errors.New("house letter required")
)

var postcodePattern = regexp.MustCompile(`^[0-9]{4}[A-Z]{2}$`)

// Address is a resolved household
type Address struct {
	Postcode    string `json:"postcode" yaml:"postcode"`
	HouseNumber string `json:"house_number" yaml:"house_number"`
	HouseLetter string `json:"house_letter,omitempty" yaml:"house_letter,omitempty"`
	BagID       string `json:"bag_id" yaml:"bag_id"`
}

// String formats the address the way it is written on an envelope
func (a Address) String() string {
	return a.Postcode + " " + a.HouseNumber + a.HouseLetter
}

// Lookup lists the address candidates at a postcode and house number
type Lookup interface {
	Addresses(ctx context.Context, postcode, houseNumber string) ([]huisvuil.AddressCandidate, error)
}

// LetterChooser picks one of several house letters. The empty string is a
// valid letter.
type LetterChooser interface {
	ChooseLetter(ctx context.Context, letters []string) (string, error)
}

// ChooserFunc adapts a function to LetterChooser
type ChooserFunc func(ctx context.Context, letters []string) (string, error)

// ChooseLetter calls f
func (f ChooserFunc) ChooseLetter(ctx context.Context, letters []string) (string, error) {
	return f(ctx, letters)
}

// FixedChooser always picks the same letter
type FixedChooser string

// ChooseLetter returns the fixed letter without looking at the options
func (c FixedChooser) ChooseLetter(context.Context, []string) (string, error) {
	return string(c), nil
}

// Resolver resolves addresses against the calendar service
type Resolver struct {
	lookup  Lookup
	chooser LetterChooser
	log     *zap.Logger
}

// NewResolver creates a Resolver. A nil chooser makes an address with several
// house letters fail with ErrLetterRequired.
func NewResolver(lookup Lookup, chooser LetterChooser, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{lookup: lookup, chooser: chooser, log: log.Named("address")}
}

// Resolve finds the bag id for a postcode and house number. A single
// candidate is taken as is; several candidates are put to the chooser.
func (r *Resolver) Resolve(ctx context.Context, postcode, houseNumber string) (Address, error) {
	postcode, err := NormalizePostcode(postcode)
	if err != nil {
		return Address{}, err
	}
	houseNumber, err = NormalizeHouseNumber(houseNumber)
	if err != nil {
		return Address{}, err
	}

	candidates, err := r.lookup.Addresses(ctx, postcode, houseNumber)
	if err != nil {
		return Address{}, err
	}
	if len(candidates) == 0 {
		return Address{}, fmt.Errorf("%w: %s %s", ErrAddressNotFound, postcode, houseNumber)
	}

	letter := candidates[0].HouseLetter
	if len(candidates) > 1 {
		if r.chooser == nil {
			return Address{}, fmt.Errorf("%w: %s %s has letters %s", ErrLetterRequired,
				postcode, houseNumber, strings.Join(quoted(Letters(candidates)), ", "))
		}
		letter, err = r.chooser.ChooseLetter(ctx, Letters(candidates))
		if err != nil {
			return Address{}, fmt.Errorf("failed to choose a house letter: %w", err)
		}
	}

	bagID, err := BagID(candidates, letter)
	if err != nil {
		return Address{}, err
	}

	addr := Address{
		Postcode:    postcode,
		HouseNumber: houseNumber,
		HouseLetter: strings.ToUpper(strings.TrimSpace(letter)),
		BagID:       bagID,
	}
	r.log.Debug("resolved address", zap.Stringer("address", addr), zap.String("bag_id", bagID),
		zap.Int("candidates", len(candidates)))
	return addr, nil
}

// BagID returns the bag id of the candidate with the given house letter,
// compared case-insensitively
func BagID(candidates []huisvuil.AddressCandidate, letter string) (string, error) {
	letter = strings.TrimSpace(letter)
	for _, c := range candidates {
		if strings.EqualFold(strings.TrimSpace(c.HouseLetter), letter) {
			return c.BagID, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrNoMatchingLetter, letter)
}

// Letters lists the house letters of the candidates in service order
func Letters(candidates []huisvuil.AddressCandidate) []string {
	letters := make([]string, 0, len(candidates))
	for _, c := range candidates {
		letters = append(letters, c.HouseLetter)
	}
	return letters
}

// NormalizePostcode upper-cases a postcode and strips its spaces
func NormalizePostcode(postcode string) (string, error) {
	normalized := strings.ToUpper(strings.Join(strings.Fields(postcode), ""))
	if !postcodePattern.MatchString(normalized) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPostcode, postcode)
	}
	return normalized, nil
}

// NormalizeHouseNumber checks that a house number is a positive integer
func NormalizeHouseNumber(houseNumber string) (string, error) {
	n, err := strconv.Atoi(strings.TrimSpace(houseNumber))
	if err != nil || n <= 0 {
		return "", fmt.Errorf("%w: %q", ErrInvalidHouseNumber, houseNumber)
	}
	return strconv.Itoa(n), nil
}

func quoted(letters []string) []string {
	out := make([]string, len(letters))
	for i, l := range letters {
		out[i] = strconv.Quote(l)
	}
	return out
}
