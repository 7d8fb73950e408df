package service

import (
	"crypto/rand"
	"math/big"
)

// алфавит без неоднозначных символов (0/O, 1/I)
const codeCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const JoinCodeLength = 6

// GenerateJoinCode возвращает случайный код присоединения к сессии
func GenerateJoinCode() (string, error) {
	code := make([]byte, JoinCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeCharset))))
		if err != nil {
			return "", err
		}
		code[i] = codeCharset[n.Int64()]
	}
	return string(code), nil
}
