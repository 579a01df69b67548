package crypto

import (
	"crypto/rsa"
	"math/big"

	"github.com/awnumar/memguard"
)

// Wipe zeroes the provided buffer.
func Wipe(b []byte) {
	if len(b) == 0 {
		return
	}
	memguard.WipeBytes(b)
}

// WipePrivateKey overwrites the secret components of k. The key is unusable
// afterwards. This is best-effort: copies made by the runtime or by crypto/rsa
// internals cannot be reached.
func WipePrivateKey(k *rsa.PrivateKey) {
	if k == nil {
		return
	}
	wipeInt(k.D)
	for _, p := range k.Primes {
		wipeInt(p)
	}
	wipeInt(k.Precomputed.Dp)
	wipeInt(k.Precomputed.Dq)
	wipeInt(k.Precomputed.Qinv)
	for i := range k.Precomputed.CRTValues {
		crt := &k.Precomputed.CRTValues[i]
		wipeInt(crt.Exp)
		wipeInt(crt.Coeff)
		wipeInt(crt.R)
	}
}

func wipeInt(x *big.Int) {
	if x == nil {
		return
	}
	words := x.Bits()
	for i := range words {
		words[i] = 0
	}
	x.SetInt64(0)
}
