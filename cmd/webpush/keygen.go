package main

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/kochabx/webpush/core/crypto/vapid"
)

// runKeygen prints a fresh key pair as {publicKey, privateKey}. With -o the
// pair goes to a 0600 file and only the public key is printed.
func runKeygen(_ context.Context, args []string, stdout io.Writer) error {
	fs := pflag.NewFlagSet("keygen", pflag.ContinueOnError)
	out := fs.StringP("output", "o", "", "write the key pair to this file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	kp, err := vapid.GenerateKeyPair()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(kp, "", "  ")
	if err != nil {
		return err
	}

	if *out == "" {
		_, err = stdout.Write(append(data, '\n'))
		return err
	}
	if err := os.WriteFile(*out, append(data, '\n'), 0o600); err != nil {
		return err
	}
	_, err = io.WriteString(stdout, kp.PublicKeyString()+"\n")
	return err
}

// readKeyPair loads a file written by keygen.
func readKeyPair(path string) (*vapid.KeyPair, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	kp := new(vapid.KeyPair)
	if err := json.Unmarshal(data, kp); err != nil {
		return nil, err
	}
	return kp, nil
}
