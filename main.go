package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/live-labs/keyvault/cmd"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "init":
		runInit(os.Args[2:])
	case "wrap":
		runWrap(os.Args[2:])
	case "unwrap":
		runUnwrap(os.Args[2:])
	case "passwd":
		runPasswd(os.Args[2:])
	case "verify":
		runVerify(os.Args[2:])
	case "status":
		runStatus(os.Args[2:])
	case "keyring":
		runKeyring(os.Args[2:])
	case "completion":
		runCompletion(os.Args[2:])
	case "help", "-h", "--help":
		if len(os.Args) <= 2 {
			printUsage()
			return
		}
		printCommandHelp(os.Args[2])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func runInit(args []string) {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	cmd.Init()
}

func runWrap(args []string) {
	fs := flag.NewFlagSet("wrap", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	cmd.Wrap(fs.Args())
}

func runUnwrap(args []string) {
	fs := flag.NewFlagSet("unwrap", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	cmd.Unwrap(fs.Args())
}

func runPasswd(args []string) {
	fs := flag.NewFlagSet("passwd", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	cmd.Passwd()
}

func runVerify(args []string) {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	cmd.Verify()
}

func runStatus(args []string) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	cmd.Status()
}

func runKeyring(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: keyvault keyring <save|forget|status>")
		os.Exit(1)
	}

	switch args[0] {
	case "save":
		cmd.KeyringSave()
	case "forget":
		cmd.KeyringDelete()
	case "status":
		cmd.KeyringStatus()
	default:
		fmt.Fprintf(os.Stderr, "Unknown keyring action: %s\n", args[0])
		fmt.Fprintln(os.Stderr, "Usage: keyvault keyring <save|forget|status>")
		os.Exit(1)
	}
}

func runCompletion(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: keyvault completion <bash|zsh|fish>")
		os.Exit(1)
	}
	cmd.Completion(args[0])
}

func printUsage() {
	fmt.Println("keyvault - password-protected master-secret vault for credential wrapping")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  keyvault <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  init        Create a .keyvault vault in current directory")
	fmt.Println("  wrap        Encrypt a credential with the master secret")
	fmt.Println("  unwrap      Decrypt a wrapped credential")
	fmt.Println("  passwd      Change vault password")
	fmt.Println("  verify      Check the vault password")
	fmt.Println("  status      Show vault status")
	fmt.Println("  keyring     Manage the cached keyring password")
	fmt.Println("  completion  Generate shell completions")
	fmt.Println("  help        Show help for a command")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  keyvault init                   # Create new vault")
	fmt.Println("  keyvault wrap < key.txt         # Wrap a private key from stdin")
	fmt.Println("  keyvault unwrap <wrapped>       # Recover the raw credential")
	fmt.Println("  keyvault passwd                 # Rotate the vault password")
	fmt.Println()
	fmt.Println("Use 'keyvault help <command>' for more information about a command.")
}

func printCommandHelp(command string) {
	switch command {
	case "init":
		fmt.Println("keyvault init")
		fmt.Println()
		fmt.Println("Creates a .keyvault vault file in the current directory and")
		fmt.Println("generates its random master secret, encrypted under your password.")
		fmt.Println("The password is not stored anywhere - you must remember it.")
		fmt.Println()
		fmt.Println("The master secret is generated exactly once. Re-running init on an")
		fmt.Println("existing vault fails: a fresh master secret would orphan every")
		fmt.Println("credential wrapped under the old one.")
	case "wrap":
		fmt.Println("keyvault wrap [<credential>|-]")
		fmt.Println()
		fmt.Println("Encrypts a raw credential (for example a private key) with the")
		fmt.Println("vault's master secret and prints the wrapped string. The credential")
		fmt.Println("is read from the argument, or from stdin when omitted or '-'.")
		fmt.Println()
		fmt.Println("Wrapped credentials are keyed by the master secret, not by your")
		fmt.Println("password, so they survive password changes.")
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  keyvault wrap < key.txt")
		fmt.Println("  keyvault wrap 5KJvsngHeMpm884...")
	case "unwrap":
		fmt.Println("keyvault unwrap [<wrapped>|-]")
		fmt.Println()
		fmt.Println("Decrypts a credential previously produced by 'keyvault wrap' and")
		fmt.Println("prints the raw form. Reads from the argument or stdin.")
	case "passwd":
		fmt.Println("keyvault passwd")
		fmt.Println()
		fmt.Println("Changes the vault password. Only the master-secret envelope is")
		fmt.Println("re-encrypted; wrapped credentials are untouched and stay valid.")
	case "verify":
		fmt.Println("keyvault verify")
		fmt.Println()
		fmt.Println("Checks that a password unlocks the vault, then locks it again.")
	case "status":
		fmt.Println("keyvault status")
		fmt.Println()
		fmt.Println("Shows vault state: master secret presence, timestamps, vault ID")
		fmt.Println("and whether a password is cached in the OS keyring.")
		fmt.Println()
		fmt.Println("Does not require a password.")
	case "keyring":
		fmt.Println("keyvault keyring <save|forget|status>")
		fmt.Println()
		fmt.Println("Manages the vault password cached in the OS keyring:")
		fmt.Println("  save     Verify the password and store it")
		fmt.Println("  forget   Remove the stored password")
		fmt.Println("  status   Show whether a password is stored")
	case "completion":
		fmt.Println("keyvault completion <bash|zsh|fish>")
		fmt.Println()
		fmt.Println("Outputs shell completion script for the specified shell.")
		fmt.Println()
		fmt.Println("Setup:")
		fmt.Println("  # Bash - add to ~/.bashrc")
		fmt.Println("  eval \"$(keyvault completion bash)\"")
		fmt.Println()
		fmt.Println("  # Zsh - add to ~/.zshrc")
		fmt.Println("  eval \"$(keyvault completion zsh)\"")
		fmt.Println()
		fmt.Println("  # Fish - add to ~/.config/fish/config.fish")
		fmt.Println("  keyvault completion fish | source")
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
	}
}
