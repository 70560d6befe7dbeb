/*Basic command structure*/
package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

// cli commands / args available
var cli struct {
	Globals globals `embed:""`

	Claim        claimCmd        `cmd:"" help:"Exchange a setup token for an access key."`
	Accounts     accountsCmd     `cmd:"" help:"Fetch accounts, optionally within a date range."`
	Transactions transactionsCmd `cmd:"" help:"Fetch transactions, this month unless told otherwise."`
}

// loadDotEnv fills in any vars not already set from the given .env files
// (default ./.env). A missing file is fine, a broken one isn't.
func loadDotEnv(filenames ...string) error {
	err := godotenv.Load(filenames...)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load .env: %w", err)
}

func main() {
	envErr := loadDotEnv()

	ctx := kong.Parse(&cli, kong.Name("sfin"), kong.Description("SimpleFIN bridge client."))
	ctx.FatalIfErrorf(envErr)

	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
