package cmd

import (
	"fmt"
	"os"
)

// Completion outputs shell completion scripts
func Completion(shell string) {
	switch shell {
	case "bash":
		fmt.Print(bashCompletion)
	case "zsh":
		fmt.Print(zshCompletion)
	case "fish":
		fmt.Print(fishCompletion)
	default:
		fmt.Fprintf(os.Stderr, "Unknown shell: %s\nSupported: bash, zsh, fish\n", shell)
		os.Exit(1)
	}
}

const bashCompletion = `_keyvault() {
    local cur prev words cword
    _init_completion || return

    local commands="init wrap unwrap passwd verify status keyring completion help"

    if [[ $cword -eq 1 ]]; then
        COMPREPLY=($(compgen -W "$commands" -- "$cur"))
        return
    fi

    local cmd="${words[1]}"
    case "$cmd" in
        keyring)
            COMPREPLY=($(compgen -W "save forget status" -- "$cur"))
            ;;
        help)
            COMPREPLY=($(compgen -W "$commands" -- "$cur"))
            ;;
        completion)
            COMPREPLY=($(compgen -W "bash zsh fish" -- "$cur"))
            ;;
    esac
}
complete -F _keyvault keyvault
`

const zshCompletion = `#compdef keyvault

_keyvault() {
    local -a commands
    commands=(
        'init:Create a .keyvault vault in current directory'
        'wrap:Encrypt a credential with the master secret'
        'unwrap:Decrypt a wrapped credential'
        'passwd:Change vault password'
        'verify:Check the vault password'
        'status:Show vault status'
        'keyring:Manage the cached keyring password'
        'completion:Generate shell completions'
        'help:Show help for a command'
    )

    if (( CURRENT == 2 )); then
        _describe 'command' commands
        return
    fi

    case "$words[2]" in
        keyring)
            _values 'action' save forget status
            ;;
        completion)
            _values 'shell' bash zsh fish
            ;;
        help)
            _describe 'command' commands
            ;;
    esac
}

_keyvault "$@"
`

const fishCompletion = `complete -c keyvault -f
complete -c keyvault -n '__fish_use_subcommand' -a init -d 'Create a .keyvault vault in current directory'
complete -c keyvault -n '__fish_use_subcommand' -a wrap -d 'Encrypt a credential with the master secret'
complete -c keyvault -n '__fish_use_subcommand' -a unwrap -d 'Decrypt a wrapped credential'
complete -c keyvault -n '__fish_use_subcommand' -a passwd -d 'Change vault password'
complete -c keyvault -n '__fish_use_subcommand' -a verify -d 'Check the vault password'
complete -c keyvault -n '__fish_use_subcommand' -a status -d 'Show vault status'
complete -c keyvault -n '__fish_use_subcommand' -a keyring -d 'Manage the cached keyring password'
complete -c keyvault -n '__fish_use_subcommand' -a completion -d 'Generate shell completions'
complete -c keyvault -n '__fish_use_subcommand' -a help -d 'Show help for a command'
complete -c keyvault -n '__fish_seen_subcommand_from keyring' -a 'save forget status'
complete -c keyvault -n '__fish_seen_subcommand_from completion' -a 'bash zsh fish'
`
