package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"

	"github.com/google/shlex"
	"github.com/urfave/cli"

	"github.com/thelolagemann/dsrtc/internal/nds"
	"github.com/thelolagemann/dsrtc/internal/types"
)

var shellCommand = cli.Command{
	Name:   "shell",
	Usage:  "interactive monitor for driving a single chip",
	Flags:  systemFlags,
	Action: shellAction,
}

const shellHelp = `commands:
  read                   read the 16-bit IO register
  write <value>          write the 16-bit IO register
  tick [cycles]          advance the system (default: one second)
  date                   print the current date and time
  set <y> <mo> <d> <h> <mi> <s>  set the date and time
  status                 dump the register bank
  reset                  hardware reset (calendar survives)
  save <file>            write a savestate
  load <file>            restore a savestate
  quit`

func shellAction(c *cli.Context) error {
	sys, err := newSystem(c)
	if err != nil {
		return err
	}

	fmt.Println("dsrtc shell, 'help' for commands")

	sc := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !sc.Scan() {
			return sc.Err()
		}

		args, err := shlex.Split(sc.Text())
		if err != nil {
			fmt.Println("parse error:", err)
			continue
		}
		if len(args) == 0 {
			continue
		}

		if err := shellDispatch(sys, args); err != nil {
			if err == errShellQuit {
				return nil
			}
			fmt.Println(err)
		}
	}
}

var errShellQuit = fmt.Errorf("quit")

func shellDispatch(sys *nds.NDS, args []string) error {
	switch args[0] {
	case "quit", "exit":
		return errShellQuit

	case "help":
		fmt.Println(shellHelp)

	case "read":
		fmt.Printf("%04X\n", sys.Bus.Read16(types.RTC))

	case "write":
		if len(args) != 2 {
			return fmt.Errorf("usage: write <value>")
		}
		v, err := strconv.ParseUint(args[1], 0, 16)
		if err != nil {
			return fmt.Errorf("bad value %q", args[1])
		}
		sys.Bus.Write16(types.RTC, uint16(v))

	case "tick":
		cycles := uint64(nds.ClockSpeed)
		if len(args) > 1 {
			v, err := strconv.ParseUint(args[1], 0, 64)
			if err != nil {
				return fmt.Errorf("bad cycle count %q", args[1])
			}
			cycles = v
		}
		sys.Run(cycles)

	case "date":
		year, month, day, hour, minute, second := sys.RTC.GetDateTime()
		regs := sys.RTC.Registers()
		fmt.Printf("%04d-%02d-%02d (%s) %02d:%02d:%02d\n",
			year, month, day, weekdayNames[regs.DateTime[3]%7], hour, minute, second)

	case "set":
		if len(args) != 7 {
			return fmt.Errorf("usage: set <y> <mo> <d> <h> <mi> <s>")
		}
		var fields [6]int
		for i, a := range args[1:] {
			v, err := strconv.Atoi(a)
			if err != nil {
				return fmt.Errorf("bad field %q", a)
			}
			fields[i] = v
		}
		sys.RTC.SetDateTime(fields[0], fields[1], fields[2], fields[3], fields[4], fields[5])

	case "status":
		regs := sys.RTC.Registers()
		fmt.Printf("status1 %02X  status2 %02X\n", regs.StatusReg1, regs.StatusReg2)
		fmt.Printf("datetime % 02X\n", regs.DateTime)
		fmt.Printf("alarm1 % 02X  alarm2 % 02X\n", regs.Alarm1, regs.Alarm2)
		fmt.Printf("adjust %02X  free %02X  minutes %d\n", regs.ClockAdjust, regs.FreeReg, regs.MinuteCount)

	case "reset":
		sys.RTC.Reset()

	case "save":
		if len(args) != 2 {
			return fmt.Errorf("usage: save <file>")
		}
		return sys.SaveStateFile(args[1])

	case "load":
		if len(args) != 2 {
			return fmt.Errorf("usage: load <file>")
		}
		return sys.LoadStateFile(args[1])

	default:
		return fmt.Errorf("unknown command %q, 'help' for commands", args[0])
	}

	return nil
}
