// Command ufsutil is a small command-line driver over the ufs package: it
// formats images and manipulates files and directories inside them, one
// subcommand per operation.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/mbrt/unixfs/ufs"
)

func usage() {
	fmt.Fprintln(os.Stderr, `ufsutil <command> [arguments]

Commands:
  format <image> <numblocks>   create a fresh image
  ls <image> <path>             list a directory
  mkdir <image> <path>          create a directory
  touch <image> <path>          create an empty regular file
  cat <image> <path>            print a file's contents to stdout
  put <image> <path> <srcfile>  copy a local file into the image
  rm <image> <path>             delete a regular file
  rmdir <image> <path>          remove an empty directory`)
}

func main() {
	log.SetFlags(0)
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "format":
		err = runFormat(args)
	case "ls":
		err = runLs(args)
	case "mkdir":
		err = runMkdir(args)
	case "touch":
		err = runTouch(args)
	case "cat":
		err = runCat(args)
	case "put":
		err = runPut(args)
	case "rm":
		err = runRm(args)
	case "rmdir":
		err = runRmdir(args)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("ufsutil %s: %v", cmd, err)
	}
}

func runFormat(args []string) error {
	fs := flag.NewFlagSet("format", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 2 {
		return fmt.Errorf("usage: ufsutil format <image> <numblocks>")
	}
	n, err := strconv.ParseUint(fs.Arg(1), 10, 32)
	if err != nil {
		return fmt.Errorf("invalid numblocks: %w", err)
	}
	return ufs.FormatFS(fs.Arg(0), uint32(n))
}

func openImage(path string) (*ufs.FileSystem, error) {
	return ufs.OpenFS(path)
}

func runLs(args []string) error {
	fs := flag.NewFlagSet("ls", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 2 {
		return fmt.Errorf("usage: ufsutil ls <image> <path>")
	}
	fsys, err := openImage(fs.Arg(0))
	if err != nil {
		return err
	}
	defer fsys.Close()
	return fsys.FilePrintDir(fs.Arg(1), os.Stdout)
}

func runMkdir(args []string) error {
	fs := flag.NewFlagSet("mkdir", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 2 {
		return fmt.Errorf("usage: ufsutil mkdir <image> <path>")
	}
	fsys, err := openImage(fs.Arg(0))
	if err != nil {
		return err
	}
	defer fsys.Close()
	return fsys.FileMkdir(fs.Arg(1))
}

func runTouch(args []string) error {
	fs := flag.NewFlagSet("touch", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 2 {
		return fmt.Errorf("usage: ufsutil touch <image> <path>")
	}
	fsys, err := openImage(fs.Arg(0))
	if err != nil {
		return err
	}
	defer fsys.Close()
	return fsys.FileCreate(fs.Arg(1))
}

func runCat(args []string) error {
	fs := flag.NewFlagSet("cat", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 2 {
		return fmt.Errorf("usage: ufsutil cat <image> <path>")
	}
	fsys, err := openImage(fs.Arg(0))
	if err != nil {
		return err
	}
	defer fsys.Close()

	h, err := fsys.FileOpen(fs.Arg(1))
	if err != nil {
		return err
	}
	defer fsys.FileClose(h)

	buf := make([]byte, ufs.BlockSize)
	for {
		n, err := fsys.FileRead(h, buf, len(buf))
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		if _, err := os.Stdout.Write(buf[:n]); err != nil {
			return err
		}
	}
}

func runPut(args []string) error {
	fs := flag.NewFlagSet("put", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 3 {
		return fmt.Errorf("usage: ufsutil put <image> <path> <srcfile>")
	}
	fsys, err := openImage(fs.Arg(0))
	if err != nil {
		return err
	}
	defer fsys.Close()

	src, err := os.Open(fs.Arg(2))
	if err != nil {
		return err
	}
	defer src.Close()

	if err := fsys.FileCreate(fs.Arg(1)); err != nil {
		return err
	}
	h, err := fsys.FileOpen(fs.Arg(1))
	if err != nil {
		return err
	}
	defer fsys.FileClose(h)

	buf := make([]byte, ufs.BlockSize)
	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			if _, werr := fsys.FileWrite(h, buf[:n], n); werr != nil {
				return werr
			}
		}
		if rerr == io.EOF {
			return nil
		}
		if rerr != nil {
			return rerr
		}
	}
}

func runRm(args []string) error {
	fs := flag.NewFlagSet("rm", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 2 {
		return fmt.Errorf("usage: ufsutil rm <image> <path>")
	}
	fsys, err := openImage(fs.Arg(0))
	if err != nil {
		return err
	}
	defer fsys.Close()
	return fsys.FileDelete(fs.Arg(1))
}

func runRmdir(args []string) error {
	fs := flag.NewFlagSet("rmdir", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 2 {
		return fmt.Errorf("usage: ufsutil rmdir <image> <path>")
	}
	fsys, err := openImage(fs.Arg(0))
	if err != nil {
		return err
	}
	defer fsys.Close()
	return fsys.FileRmdir(fs.Arg(1))
}
