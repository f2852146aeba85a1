package main

import (
	"fmt"
	"os"

	cli "github.com/spf13/pflag"

	"sitevoice/internal/ipc"
)

func main() {
	sockPath := cli.StringP("sock", "s", ipc.DefaultSocketPath, "Control socket path")
	lang := cli.StringP("lang", "L", "", "Language for the config command")
	webhookURL := cli.StringP("webhook", "w", "", "Webhook URL for the config command")
	path := cli.StringP("path", "p", "", "File to send with the upload command")
	name := cli.StringP("name", "n", "", "Override the upload filename")
	location := cli.String("location", "", "Site location for the upload command")
	unit := cli.String("unit", "", "Unit for the upload command")
	description := cli.String("description", "", "Description for the upload command")
	wantAudio := cli.Bool("audio", false, "Ask for a spoken answer to an upload")
	cli.Parse()

	cmd := "trigger"
	if cli.NArg() > 0 {
		cmd = cli.Arg(0)
	}

	args := map[string]string{}
	put := func(key, val string) {
		if val != "" {
			args[key] = val
		}
	}
	put("lang", *lang)
	put("webhook", *webhookURL)
	put("path", *path)
	put("name", *name)
	put("location", *location)
	put("unit", *unit)
	put("description", *description)
	if *wantAudio {
		args["audio"] = "true"
	}

	reply, err := ipc.SendCommand(*sockPath, cmd, args)
	if err != nil {
		fmt.Println("sitevoice-daemon not running:", err)
		os.Exit(1)
	}
	if !reply.OK {
		fmt.Println("error:", reply.Msg)
		os.Exit(1)
	}
	if reply.Msg != "" {
		fmt.Println(reply.Msg)
	}
}
