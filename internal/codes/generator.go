package codes

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Prefixes for the two ledgers.
const (
	WalletPrefix = "TX"
	LoanPrefix   = "LN"
)

const base36Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Generator produces record IDs and human-presentable transaction codes.
type Generator struct {
	mu   sync.Mutex
	rand *rand.Rand
}

// NewGenerator creates a new code generator.
func NewGenerator() *Generator {
	return &Generator{
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// RecordID generates an opaque unique record identifier.
func (g *Generator) RecordID() string {
	return uuid.New().String()
}

// TransactionCode generates a code in the form PREFIX-RRRRRRTTTTTTTT where
// RRRRRR is 6 random base36 characters and T is the current unix-millisecond
// timestamp in base36, both uppercase. The random component keeps codes
// distinct even within the same millisecond; codes are never reused.
func (g *Generator) TransactionCode(prefix string) string {
	g.mu.Lock()
	random := make([]byte, 6)
	for i := range random {
		random[i] = base36Chars[g.rand.Intn(len(base36Chars))]
	}
	g.mu.Unlock()

	timestamp := strings.ToUpper(strconv.FormatInt(time.Now().UnixMilli(), 36))
	return fmt.Sprintf("%s-%s%s", prefix, random, timestamp)
}

// VerificationHash computes the best-effort integrity tag for a record from
// its amount, owner and creation instant. It is a tamper flag, not a
// security primitive.
func VerificationHash(amount decimal.Decimal, ownerID string, timestamp int64) string {
	data := fmt.Sprintf("%s-%s-%d", amount.String(), ownerID, timestamp)
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}

// QRPayload builds the opaque presentation payload carried by send records.
func QRPayload(transactionCode string, amount decimal.Decimal) string {
	payload, _ := json.Marshal(map[string]any{
		"code":   transactionCode,
		"amount": amount,
	})
	return base64.StdEncoding.EncodeToString(payload)
}
