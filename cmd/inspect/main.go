// Command inspect prints the chat records of a Badger store as a table.
// It opens the store read-only and can run next to a live node.
package main

import (
	"chat-relay/infrastructure/storage"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/kelseyhightower/envconfig"
	"github.com/olekukonko/tablewriter"
)

type Settings struct {
	BadgerFilepath string `envconfig:"BADGER_FILEPATH" default:"./data/badger"`
	// INSPECT_PREFIX restricts the scan, e.g. "msg:12:" for one room history.
	Prefix  string `envconfig:"INSPECT_PREFIX"`
	Limit   int    `envconfig:"INSPECT_LIMIT" default:"500"`
	Colours bool   `envconfig:"INSPECT_COLOURS" default:"true"`
}

var kindStyles = map[string]color.Style{
	"ROOM":   color.New(color.FgCyan, color.OpBold),
	"MEMBER": color.New(color.FgGreen),
	"PART":   color.New(color.FgBlue),
	"MSG":    color.New(color.FgYellow),
	"RS":     color.New(color.FgGray),
	"PAIR":   color.New(color.FgMagenta),
}

func main() {
	var settings Settings
	if err := envconfig.Process("", &settings); err != nil {
		log.Fatal("Invalid settings: ", err)
	}
	if !settings.Colours {
		color.Disable()
	}

	db, err := openDB(settings.BadgerFilepath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Kind", "At", "Entity", "Detail"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	rows := 0
	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(settings.Prefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix) && rows < settings.Limit; it.Next() {
			item := it.Item()
			key := string(item.Key())
			err := item.Value(func(v []byte) error {
				record := storage.DescribeRecord(key, v)
				at := "--"
				if !record.At.IsZero() {
					at = record.At.Format(time.DateTime)
				}
				table.Append([]string{key, styled(record.Kind), at, record.Entity, record.Detail})
				return nil
			})
			if err != nil {
				return err
			}
			rows++
		}
		return nil
	})
	if err != nil {
		log.Fatal(err)
	}

	table.Render()
	fmt.Println(color.New(color.OpBold).Sprintf("%d record(s)", rows))
}

func styled(kind string) string {
	if style, ok := kindStyles[kind]; ok {
		return style.Render(kind)
	}
	return kind
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true)
	return badger.Open(opts)
}
