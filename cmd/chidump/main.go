// Command chidump prints the rows of a chidb table tree in key order,
// and reports basic page statistics for the file as a whole.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/chidb/chidb"
)

func main() {
	root := flag.Uint("root", 1, "page number of the table tree root to dump")
	verbose := flag.Bool("v", false, "print per-page free-space stats and a file checksum")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: chidump [-root N] [-v] FILE")
		os.Exit(2)
	}

	bt, err := chidb.Open(flag.Arg(0))
	if err != nil {
		log.Fatalf("chidump: %v", err)
	}
	defer bt.Close()

	pageCount, pageSize, pages := bt.Stat()
	fmt.Printf("pages: %d, page size: %d\n", pageCount, pageSize)

	if *verbose {
		for _, p := range pages {
			fmt.Printf("  page %d: %s, %d free bytes\n", p.PageNo, p.Type, p.FreeBytes)
		}
		sum, err := bt.Checksum()
		if err != nil {
			log.Fatalf("chidump: %v", err)
		}
		fmt.Printf("checksum: %08x\n", sum)
	}

	cur, err := chidb.NewCursor(bt, uint32(*root))
	if err != nil {
		log.Fatalf("chidump: %v", err)
	}
	defer cur.Close()

	for {
		key, payload, ok, err := cur.Next()
		if err != nil {
			log.Fatalf("chidump: %v", err)
		}
		if !ok {
			break
		}
		fmt.Printf("%d\t%q\n", key, payload)
	}
}
