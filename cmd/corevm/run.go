package main

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/urfave/cli/v2"

	"github.com/openevm/corevm/interpreter"
	_ "github.com/openevm/corevm/processor"
	"github.com/openevm/corevm/state"
	"github.com/openevm/corevm/tosca"
)

var runCmd = cli.Command{
	Action:    doRun,
	Name:      "run",
	Usage:     "execute one transaction against a fresh in-memory world state",
	ArgsUsage: " ",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "sender", Usage: "sender address, 20-byte hex", Value: "0x0100000000000000000000000000000000000000"},
		&cli.StringFlag{Name: "to", Usage: "recipient address, 20-byte hex; omit to create a contract"},
		&cli.StringFlag{Name: "code", Usage: "hex-encoded code installed at --to before the transaction runs"},
		&cli.StringFlag{Name: "input", Usage: "hex-encoded call data, or init code when --to is omitted"},
		&cli.Uint64Flag{Name: "nonce", Usage: "sender's nonce at the start of the transaction"},
		&cli.Uint64Flag{Name: "value", Usage: "amount transferred to the recipient, in wei"},
		&cli.Uint64Flag{Name: "balance", Usage: "sender's balance before the transaction, in wei", Value: 1_000_000_000_000},
		&cli.Int64Flag{Name: "gas-limit", Usage: "gas limit for the transaction", Value: 1_000_000},
		&cli.Uint64Flag{Name: "gas-price", Usage: "gas price, in wei"},
		&cli.StringFlag{Name: "revision", Usage: "hardfork revision to execute under", Value: "Cancun"},
		&cli.StringFlag{Name: "interpreter", Usage: "registered interpreter implementation to use", Value: "corevm"},
		&cli.BoolFlag{Name: "trace", Usage: "print one line per instruction executed"},
	},
}

func doRun(ctx *cli.Context) error {
	revision, err := parseRevision(ctx.String("revision"))
	if err != nil {
		return err
	}

	sender := common.HexToAddress(ctx.String("sender"))
	world := state.New()
	world.SetAccount(tosca.Address(sender), state.Account{
		Nonce:   ctx.Uint64("nonce"),
		Balance: tosca.NewValue(ctx.Uint64("balance")),
	})

	var recipient *tosca.Address
	if to := ctx.String("to"); to != "" {
		addr := tosca.Address(common.HexToAddress(to))
		recipient = &addr
		if code := ctx.String("code"); code != "" {
			world.SetAccount(addr, state.Account{Code: common.FromHex(code)})
		}
	}

	var logger interpreter.StepLogger
	if ctx.Bool("trace") {
		logger = interpreter.WriterLogger{Out: ctx.App.Writer}
	}

	vm, err := tosca.NewInterpreter(ctx.String("interpreter"), interpreter.Config{Logger: logger})
	if err != nil {
		return err
	}
	proc, err := tosca.NewProcessor(ctx.String("interpreter"), vm)
	if err != nil {
		return err
	}

	transaction := tosca.Transaction{
		Sender:    tosca.Address(sender),
		Recipient: recipient,
		Nonce:     ctx.Uint64("nonce"),
		Input:     tosca.Data(common.FromHex(ctx.String("input"))),
		Value:     tosca.NewValue(ctx.Uint64("value")),
		GasLimit:  tosca.Gas(ctx.Int64("gas-limit")),
		GasPrice:  tosca.NewValue(ctx.Uint64("gas-price")),
	}
	block := tosca.BlockParameters{Revision: revision}

	receipt, err := proc.Run(context.Background(), block, transaction, world)
	if err != nil {
		return fmt.Errorf("transaction execution failed: %w", err)
	}

	fmt.Fprintf(ctx.App.Writer, "success:    %v\n", receipt.Success)
	fmt.Fprintf(ctx.App.Writer, "gas used:   %d\n", receipt.GasUsed)
	fmt.Fprintf(ctx.App.Writer, "output:     0x%x\n", []byte(receipt.Output))
	if receipt.ContractAddress != nil {
		fmt.Fprintf(ctx.App.Writer, "created at: %v\n", *receipt.ContractAddress)
	}
	for _, log := range receipt.Logs {
		fmt.Fprintf(ctx.App.Writer, "log:        %v\n", log.Address)
	}
	return nil
}

func parseRevision(name string) (tosca.Revision, error) {
	for r := tosca.R00_Frontier; r <= tosca.R13_Cancun; r++ {
		if r.String() == name {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown revision: %s", name)
}
