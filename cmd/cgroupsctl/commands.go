package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/lipeining/cgroupsd/cgroups"
	"github.com/urfave/cli"
)

const (
	exactArgs = iota
	minArgs
)

func checkArgs(context *cli.Context, expected, checkType int) error {
	var err error
	cmdName := context.Command.Name
	switch checkType {
	case exactArgs:
		if context.NArg() != expected {
			err = fmt.Errorf("%s: %q requires exactly %d argument(s)", os.Args[0], cmdName, expected)
		}
	case minArgs:
		if context.NArg() < expected {
			err = fmt.Errorf("%s: %q requires a minimum of %d argument(s)", os.Args[0], cmdName, expected)
		}
	}
	if err != nil {
		fmt.Printf("Incorrect Usage.\n\n")
		cli.ShowCommandHelp(context, cmdName)
		return err
	}
	return nil
}

// cancelOnSignal returns a context that is cancelled when the process
// receives SIGINT or SIGTERM, so a long-running freeze/kill/destroy can be
// interrupted cleanly from the terminal instead of left to run its full
// retry budget.
func cancelOnSignal() (context.Context, func()) {
	ctx, cancel := context.WithCancel(context.Background())
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		cancel()
	}()
	return ctx, cancel
}

var mountCommand = cli.Command{
	Name:      "mount",
	Usage:     "mount a cgroup hierarchy with the given comma-separated subsystems attached",
	ArgsUsage: "<hierarchy> <subsystems>",
	Action: func(c *cli.Context) error {
		if err := checkArgs(c, 2, exactArgs); err != nil {
			return err
		}
		return cgroups.Mount(c.Args().Get(0), c.Args().Get(1))
	},
}

var unmountCommand = cli.Command{
	Name:      "unmount",
	Usage:     "unmount a cgroup hierarchy",
	ArgsUsage: "<hierarchy>",
	Action: func(c *cli.Context) error {
		if err := checkArgs(c, 1, exactArgs); err != nil {
			return err
		}
		return cgroups.Unmount(c.Args().Get(0))
	},
}

var createCommand = cli.Command{
	Name:      "create",
	Usage:     "create a cgroup directory under a hierarchy",
	ArgsUsage: "<hierarchy> <cgroup>",
	Action: func(c *cli.Context) error {
		if err := checkArgs(c, 2, exactArgs); err != nil {
			return err
		}
		return cgroups.Create(c.Args().Get(0), c.Args().Get(1))
	},
}

var removeCommand = cli.Command{
	Name:      "remove",
	Usage:     "remove a cgroup directory; fails if it still has nested cgroups",
	ArgsUsage: "<hierarchy> <cgroup>",
	Action: func(c *cli.Context) error {
		if err := checkArgs(c, 2, exactArgs); err != nil {
			return err
		}
		return cgroups.Remove(c.Args().Get(0), c.Args().Get(1))
	},
}

var assignCommand = cli.Command{
	Name:      "assign",
	Usage:     "enroll a pid into a cgroup's tasks file",
	ArgsUsage: "<hierarchy> <cgroup> <pid>",
	Action: func(c *cli.Context) error {
		if err := checkArgs(c, 3, exactArgs); err != nil {
			return err
		}
		pid, err := strconv.Atoi(c.Args().Get(2))
		if err != nil {
			return err
		}
		return cgroups.Assign(c.Args().Get(0), c.Args().Get(1), pid)
	},
}

var freezeCommand = cli.Command{
	Name:      "freeze",
	Usage:     "freeze every task in a cgroup",
	ArgsUsage: "<hierarchy> <cgroup>",
	Action: func(c *cli.Context) error {
		if err := checkArgs(c, 2, exactArgs); err != nil {
			return err
		}
		ctx, cancel := cancelOnSignal()
		defer cancel()
		ok, err := cgroups.Freeze(ctx, c.Args().Get(0), c.Args().Get(1), cgroups.DefaultFreezeConfig).Get(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("cgroup did not reach FROZEN within the retry budget")
		}
		return nil
	},
}

var thawCommand = cli.Command{
	Name:      "thaw",
	Usage:     "thaw a frozen cgroup",
	ArgsUsage: "<hierarchy> <cgroup>",
	Action: func(c *cli.Context) error {
		if err := checkArgs(c, 2, exactArgs); err != nil {
			return err
		}
		ctx, cancel := cancelOnSignal()
		defer cancel()
		ok, err := cgroups.Thaw(ctx, c.Args().Get(0), c.Args().Get(1), cgroups.DefaultFreezeConfig).Get(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("cgroup did not reach THAWED within the retry budget")
		}
		return nil
	},
}

var killCommand = cli.Command{
	Name:      "kill",
	Usage:     "kill every task in a cgroup and wait for it to empty out",
	ArgsUsage: "<hierarchy> <cgroup>",
	Action: func(c *cli.Context) error {
		if err := checkArgs(c, 2, exactArgs); err != nil {
			return err
		}
		ctx, cancel := cancelOnSignal()
		defer cancel()
		ok, err := cgroups.KillTasks(ctx, c.Args().Get(0), c.Args().Get(1), cgroups.DefaultKillConfig).Get(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("tasks remained after the kill cycle budget was exhausted")
		}
		return nil
	},
}

var destroyCommand = cli.Command{
	Name:      "destroy",
	Usage:     "kill every task in a cgroup subtree and remove it entirely",
	ArgsUsage: "<hierarchy> <cgroup>",
	Action: func(c *cli.Context) error {
		if err := checkArgs(c, 2, exactArgs); err != nil {
			return err
		}
		ctx, cancel := cancelOnSignal()
		defer cancel()
		ok, err := cgroups.Destroy(ctx, c.Args().Get(0), c.Args().Get(1), cgroups.DefaultDestroyConfig).Get(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("destroy did not complete within its retry budget")
		}
		return nil
	},
}

var statCommand = cli.Command{
	Name:      "stat",
	Usage:     "print the contents of a control file in a cgroup",
	ArgsUsage: "<hierarchy> <cgroup> <control>",
	Action: func(c *cli.Context) error {
		if err := checkArgs(c, 3, exactArgs); err != nil {
			return err
		}
		out, err := cgroups.ReadControl(c.Args().Get(0), c.Args().Get(1), c.Args().Get(2))
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	},
}

var listenCommand = cli.Command{
	Name:      "listen",
	Usage:     "block waiting for one notification on a control file's event_control listener",
	ArgsUsage: "<hierarchy> <cgroup> <control> [args]",
	Action: func(c *cli.Context) error {
		if err := checkArgs(c, 3, minArgs); err != nil {
			return err
		}
		args := ""
		if c.NArg() > 3 {
			args = c.Args().Get(3)
		}
		ctx, cancel := cancelOnSignal()
		defer cancel()
		value, err := cgroups.Listen(ctx, c.Args().Get(0), c.Args().Get(1), c.Args().Get(2), args).Get(ctx)
		if err != nil {
			return err
		}
		fmt.Println(value)
		return nil
	},
}
