// Command weave-wallet manages RSA signing keystores (SPEC_FULL §4.3.1) and
// constructs, signs, and prints weave transactions from the command line.
package main

import (
	"crypto/rsa"
	"encoding/hex"
	"fmt"
	"math/big"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/weavenet/bridge/core"
)

func main() {
	root := &cobra.Command{
		Use:   "weave-wallet",
		Short: "Manage weave signing keystores and construct transactions",
	}
	root.AddCommand(newGenerateCmd())
	root.AddCommand(newAddressCmd())
	root.AddCommand(newSignCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newGenerateCmd() *cobra.Command {
	var out string
	var passphrase string
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a new encrypted signing keystore",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logrus.StandardLogger()
			ks, mnemonic, priv, err := core.GenerateKeystore(passphrase, logger)
			if err != nil {
				return err
			}
			data, err := ks.Encode()
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, data, 0o600); err != nil {
				return fmt.Errorf("weave-wallet: write keystore: %w", err)
			}
			addr := core.ToAddress(core.PublicKeyBytes(&priv.PublicKey))
			fmt.Printf("address:  %s\n", addr.Hex())
			fmt.Printf("keystore: %s\n", out)
			fmt.Printf("recovery mnemonic (keep offline): %s\n", mnemonic)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "wallet.keystore.json", "output keystore path")
	cmd.Flags().StringVar(&passphrase, "passphrase", "", "keystore encryption passphrase")
	_ = cmd.MarkFlagRequired("passphrase")
	return cmd
}

func newAddressCmd() *cobra.Command {
	var ksPath string
	var passphrase string
	cmd := &cobra.Command{
		Use:   "address",
		Short: "Print the address for an existing keystore",
		RunE: func(cmd *cobra.Command, args []string) error {
			priv, err := openKeystoreFile(ksPath, passphrase)
			if err != nil {
				return err
			}
			addr := core.ToAddress(core.PublicKeyBytes(&priv.PublicKey))
			fmt.Println(addr.Hex())
			return nil
		},
	}
	cmd.Flags().StringVar(&ksPath, "keystore", "wallet.keystore.json", "keystore path")
	cmd.Flags().StringVar(&passphrase, "passphrase", "", "keystore encryption passphrase")
	_ = cmd.MarkFlagRequired("passphrase")
	return cmd
}

func newSignCmd() *cobra.Command {
	var ksPath, passphrase, target, quantity, reward, dataHex, lastTxHex string
	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Construct and sign a transaction, printing its canonical fields",
		RunE: func(cmd *cobra.Command, args []string) error {
			priv, err := openKeystoreFile(ksPath, passphrase)
			if err != nil {
				return err
			}
			wallet := core.NewRSAWallet(priv)

			var lastTx core.ID
			if lastTxHex != "" {
				raw, err := hex.DecodeString(lastTxHex)
				if err != nil || len(raw) != core.IDSize {
					return fmt.Errorf("weave-wallet: last-tx must be a %d-byte hex id", core.IDSize)
				}
				copy(lastTx[:], raw)
			}

			var data []byte
			if dataHex != "" {
				raw, err := hex.DecodeString(dataHex)
				if err != nil {
					return fmt.Errorf("weave-wallet: invalid data hex: %w", err)
				}
				data = raw
			}

			quantityAmt, _ := new(big.Int).SetString(orZero(quantity), 10)
			rewardAmt, _ := new(big.Int).SetString(orZero(reward), 10)

			var tx *core.Tx
			if target != "" {
				// target may be either a full RSA public key or an already
				// derived 32-byte address; NewTxToDestination normalizes it.
				destination, err := hex.DecodeString(target)
				if err != nil {
					return fmt.Errorf("weave-wallet: invalid target hex: %w", err)
				}
				tx, err = core.NewTxToDestination(destination, rewardAmt, quantityAmt, lastTx, data)
				if err != nil {
					return err
				}
			} else {
				tx, err = core.NewTxWithLastTx(data, rewardAmt, lastTx)
				if err != nil {
					return err
				}
			}

			if err := wallet.Sign(tx); err != nil {
				return err
			}

			fmt.Printf("id:        %s\n", tx.ID.Hex())
			fmt.Printf("owner:     %s\n", hex.EncodeToString(tx.Owner))
			fmt.Printf("signature: %s\n", hex.EncodeToString(tx.Signature))
			return nil
		},
	}
	cmd.Flags().StringVar(&ksPath, "keystore", "wallet.keystore.json", "keystore path")
	cmd.Flags().StringVar(&passphrase, "passphrase", "", "keystore encryption passphrase")
	cmd.Flags().StringVar(&target, "target", "", "hex-encoded recipient: a public key or an already-derived 32-byte address")
	cmd.Flags().StringVar(&quantity, "quantity", "0", "transfer quantity, in winston")
	cmd.Flags().StringVar(&reward, "reward", "0", "miner reward, in winston")
	cmd.Flags().StringVar(&dataHex, "data", "", "hex-encoded transaction data")
	cmd.Flags().StringVar(&lastTxHex, "last-tx", "", "hex-encoded id of the sender's previous transaction")
	_ = cmd.MarkFlagRequired("passphrase")
	return cmd
}

func orZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}

func openKeystoreFile(path, passphrase string) (*rsa.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("weave-wallet: read keystore: %w", err)
	}
	ks, err := core.DecodeKeystore(data)
	if err != nil {
		return nil, err
	}
	return core.OpenKeystore(ks, passphrase)
}
