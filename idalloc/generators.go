package idalloc

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

const (
	// CertificatePrefix starts every certificate number.
	CertificatePrefix = "CERT"
	// CertificateDigits is the width of the random part of a certificate number.
	CertificateDigits = 6

	internPrefix   = "nxrint"
	employeePrefix = "nxremp"
	staffDigits    = 4
)

// Digits generates Prefix followed by Width random decimal digits. The
// first digit is never zero, so every number has exactly Width digits.
type Digits struct {
	Prefix string
	Width  int
	Rand   io.Reader // nil 时使用 crypto/rand
}

// CertificateNumbers returns the generator for CERTxxxxxx numbers.
func CertificateNumbers() Digits {
	return Digits{Prefix: CertificatePrefix, Width: CertificateDigits}
}

// StaffCode returns the generator for staff codes: interns get "nxrint",
// everyone else "nxremp", followed by four digits.
func StaffCode(role string) Digits {
	prefix := employeePrefix
	if strings.EqualFold(strings.TrimSpace(role), "intern") {
		prefix = internPrefix
	}
	return Digits{Prefix: prefix, Width: staffDigits}
}

func (d Digits) Next() (string, error) {
	if d.Width <= 0 || d.Width > 18 {
		return "", fmt.Errorf("idalloc: invalid digit width %d", d.Width)
	}
	src := d.Rand
	if src == nil {
		src = rand.Reader
	}
	low := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(d.Width-1)), nil)
	span := new(big.Int).Mul(low, big.NewInt(9)) // [10^(w-1), 10^w)
	n, err := rand.Int(src, span)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%d", d.Prefix, n.Add(n, low).Int64()), nil
}

// UUID generates Prefix followed by a random UUID.
type UUID struct {
	Prefix string
}

func (u UUID) Next() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return u.Prefix + id.String(), nil
}
