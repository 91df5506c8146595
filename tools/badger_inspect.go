// Command badger_inspect dumps the message store of a (possibly running)
// server in a readable table. It opens the database read-only and bypasses
// the lock guard so it can run next to the live process.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"

	"team-hub/domain"
)

func main() {
	dbPath := flag.String("db", "/tmp/team-hub-badger", "Path to badger DB")
	// Default to "msg:" to avoid hitting the msgid: secondary index.
	prefix := flag.String("prefix", "msg:", "Prefix to scan")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Channel", "Time", "Author", "Type", "Content"})
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

	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(*prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()

			// Secondary indexes hold key pointers, not records.
			if strings.HasPrefix(string(item.Key()), "msgid:") {
				continue
			}

			err := item.Value(func(v []byte) error {
				rawKey := string(item.Key())

				var msg domain.Message
				if err := json.Unmarshal(v, &msg); err != nil || msg.ID == uuid.Nil {
					// Non-message records under a custom prefix: show them raw.
					table.Append([]string{rawKey, "-", "-", "-", "RAW",
						fmt.Sprintf("%d bytes", len(v))})
					return nil
				}

				// Show the first 8 characters of ids for readability.
				table.Append([]string{
					rawKey,
					shorten(msg.ChannelID),
					msg.CreatedAt.Format(time.TimeOnly),
					shorten(msg.AuthorID),
					string(msg.Type),
					msg.Content,
				})
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

	table.Render()
}

func shorten(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true).
		WithValueLogFileSize(10 * 1024 * 1024)

	return badger.Open(opts)
}
