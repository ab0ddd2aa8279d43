package otp

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const recordVersionV1 = 1

var (
	ErrNotFound    = errors.New("challenge not found")
	ErrExpired     = errors.New("challenge expired")
	ErrExhausted   = errors.New("challenge attempts exhausted")
	ErrMismatch    = errors.New("challenge code mismatch")
	ErrUnavailable = errors.New("challenge store unavailable")
)

// consumeChallengeLua atomically performs GET→validate→DEL/SET on a challenge
// record.
//
// KEYS[1] = record key
// ARGV[1] = provided code
// ARGV[2] = max attempts (int string)
// ARGV[3] = current unix timestamp (int string)
//
// Returns:
//
//	record bytes on success
//	error string: "not_found", "expired", "exhausted", "mismatch"
var consumeChallengeLua = redis.NewScript(`
local data = redis.call('GET', KEYS[1])
if not data then
  return {err='not_found'}
end

local providedCode = ARGV[1]
local maxAttempts = tonumber(ARGV[2])
local nowUnix = tonumber(ARGV[3])

-- Binary decode: version(1) attempts(2 big-endian) expiresAt(8 big-endian) codeLen(1) code
local version = string.byte(data, 1)
if version ~= 1 then
  redis.call('DEL', KEYS[1])
  return {err='not_found'}
end

local attempts = string.byte(data, 2) * 256 + string.byte(data, 3)

local e0,e1,e2,e3,e4,e5,e6,e7 = string.byte(data, 4, 11)
local expiresAt = e0
for _, b in ipairs({e1,e2,e3,e4,e5,e6,e7}) do
  expiresAt = expiresAt * 256 + b
end

if nowUnix > expiresAt then
  redis.call('DEL', KEYS[1])
  return {err='expired'}
end

if attempts >= maxAttempts then
  return {err='exhausted'}
end

local codeLen = string.byte(data, 12)
local code = string.sub(data, 13, 12 + codeLen)

if code ~= providedCode then
  attempts = attempts + 1
  local newData = string.sub(data, 1, 1) .. string.char(math.floor(attempts / 256), attempts % 256) .. string.sub(data, 4)
  local ttlMs = redis.call('PTTL', KEYS[1])
  if ttlMs <= 0 then
    redis.call('DEL', KEYS[1])
    return {err='expired'}
  end
  redis.call('SET', KEYS[1], newData, 'PX', ttlMs)
  if attempts >= maxAttempts then
    return {err='exhausted'}
  end
  return {err='mismatch'}
end

redis.call('DEL', KEYS[1])
return data
`)

// Key identifies one outstanding challenge.
type Key struct {
	Contact string
	Channel string
	Purpose string
}

// Challenge is the decoded challenge record.
type Challenge struct {
	Code      string
	Attempts  uint16
	ExpiresAt int64
}

// Store persists OTP challenges in Redis.
type Store struct {
	redis  redis.UniversalClient
	prefix string
}

// NewStore creates a challenge store with the given key prefix.
func NewStore(redisClient redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = "aoc"
	}
	return &Store{
		redis:  redisClient,
		prefix: prefix,
	}
}

func (s *Store) key(k Key) string {
	return s.prefix + ":" + k.Channel + ":" + k.Purpose + ":" + k.Contact
}

// Put stores a fresh challenge, replacing any outstanding one for the same
// key in a single write.
func (s *Store) Put(ctx context.Context, k Key, code string, ttl time.Duration) error {
	record := &Challenge{
		Code:      code,
		Attempts:  0,
		ExpiresAt: time.Now().Add(ttl).Unix(),
	}

	encoded, err := encodeChallenge(record)
	if err != nil {
		return err
	}

	if err := s.redis.Set(ctx, s.key(k), encoded, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Get returns the outstanding challenge for the key, checking expiry lazily.
// Used by the resend path; it never mutates the record.
func (s *Store) Get(ctx context.Context, k Key) (*Challenge, error) {
	data, err := s.redis.Get(ctx, s.key(k)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	record, err := decodeChallenge(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if time.Now().Unix() > record.ExpiresAt {
		return nil, ErrNotFound
	}
	return record, nil
}

// Consume atomically verifies and consumes the challenge for the key. At most
// one caller ever succeeds for a given record; concurrent duplicates observe
// ErrNotFound. Wrong codes count against maxAttempts; once the counter
// saturates every further call returns ErrExhausted until the record's TTL
// reaps it.
func (s *Store) Consume(ctx context.Context, k Key, code string, maxAttempts int, now time.Time) error {
	result, err := consumeChallengeLua.Run(ctx, s.redis,
		[]string{s.key(k)},
		code,
		maxAttempts,
		now.Unix(),
	).Result()

	if err != nil {
		switch err.Error() {
		case "not_found":
			return ErrNotFound
		case "expired":
			return ErrExpired
		case "exhausted":
			return ErrExhausted
		case "mismatch":
			return ErrMismatch
		default:
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}

	data, ok := result.(string)
	if !ok {
		return fmt.Errorf("%w: unexpected lua result type", ErrUnavailable)
	}

	record, decErr := decodeChallenge([]byte(data))
	if decErr != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, decErr)
	}

	// Final constant-time comparison in Go as defense-in-depth
	// (Lua already matched, but Lua string comparison is not constant-time).
	if subtle.ConstantTimeCompare([]byte(record.Code), []byte(code)) != 1 {
		return ErrMismatch
	}

	return nil
}

func encodeChallenge(record *Challenge) ([]byte, error) {
	if len(record.Code) == 0 || len(record.Code) > 255 {
		return nil, errors.New("invalid challenge code length")
	}

	var buf bytes.Buffer
	buf.WriteByte(recordVersionV1)
	if err := binary.Write(&buf, binary.BigEndian, record.Attempts); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, record.ExpiresAt); err != nil {
		return nil, err
	}
	buf.WriteByte(byte(len(record.Code)))
	buf.WriteString(record.Code)

	return buf.Bytes(), nil
}

func decodeChallenge(data []byte) (*Challenge, error) {
	if len(data) < 12 {
		return nil, errors.New("challenge record too short")
	}
	if data[0] != recordVersionV1 {
		return nil, errors.New("invalid challenge record version")
	}

	record := &Challenge{
		Attempts:  binary.BigEndian.Uint16(data[1:3]),
		ExpiresAt: int64(binary.BigEndian.Uint64(data[3:11])),
	}

	codeLen := int(data[11])
	if len(data) < 12+codeLen {
		return nil, errors.New("challenge record truncated")
	}
	record.Code = string(data[12 : 12+codeLen])

	return record, nil
}
