package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/mama165/sdk-go/database"
	"github.com/olekukonko/tablewriter"
)

// Read-only dump of the offline inbox. Safe to run against a live relay
// thanks to WithBypassLockGuard + read-only mode.
func main() {
	dbPath := flag.String("db", database.DefaultPath, "Path to badger DB")
	identity := flag.String("identity", "", "Only show this identity's inbox")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	prefix := "inbox:"
	if *identity != "" {
		prefix = fmt.Sprintf("inbox:%s:", *identity)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Receiver", "Sender", "Kind", "Timestamp", "Body", "Media"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	count := 0
	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			err := item.Value(func(v []byte) error {
				var parked struct {
					Sender    string `json:"sender"`
					Receiver  string `json:"receiver"`
					Body      string `json:"body"`
					Kind      string `json:"kind"`
					MediaRef  string `json:"mediaRef"`
					Timestamp string `json:"timestamp"`
				}
				if err := json.Unmarshal(v, &parked); err != nil {
					fmt.Printf("Error unmarshaling key %s: %v\n", string(item.Key()), err)
					return nil
				}

				body := parked.Body
				if len(body) > 48 {
					body = body[:48] + "…"
				}

				table.Append([]string{
					parked.Receiver,
					parked.Sender,
					parked.Kind,
					parked.Timestamp,
					body,
					parked.MediaRef,
				})
				count++
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatal(err)
	}

	color.Cyan.Printf("Parked messages under %q: %d\n\n", prefix, count)
	table.Render()
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true).
		WithValueLogFileSize(10 * 1024 * 1024)

	db, err := badger.Open(opts)
	if err != nil {
		if strings.Contains(err.Error(), "Log truncate required") {
			// Open in write mode once so badger can truncate, then reopen read-only
			repairOpts := badger.DefaultOptions(path).
				WithLogger(nil).WithBypassLockGuard(true)

			db, err = badger.Open(repairOpts)
			if err != nil {
				return nil, fmt.Errorf("repair failed: %w", err)
			}
			db.Close()
			return badger.Open(opts)
		}
		return nil, err
	}
	return db, nil
}
