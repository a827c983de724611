package app

import (
	"fmt"
	"strings"
)

// Command はpwauthのサブコマンド。
type Command string

const (
	// CommandServe は認証APIを起動する。引数なしの場合もこれになる。
	CommandServe Command = "serve"
	// CommandMigrate はusersテーブルのマイグレーションを適用して終了する。
	CommandMigrate Command = "migrate"
	// CommandHealthcheck は起動中のAPIの/healthを叩く。distrolessイメージのHEALTHCHECK用。
	CommandHealthcheck Command = "healthcheck"
)

var commands = []Command{CommandServe, CommandMigrate, CommandHealthcheck}

// ErrUnknownCommand は未知のサブコマンドが指定された場合のエラー。
type ErrUnknownCommand struct {
	Name string
}

func (e *ErrUnknownCommand) Error() string {
	return fmt.Sprintf("unknown command %q\n%s", e.Name, Usage())
}

// Usage はサブコマンドの一覧を返す。
func Usage() string {
	names := make([]string, len(commands))
	for i, c := range commands {
		names[i] = string(c)
	}
	return "usage: pwauth [" + strings.Join(names, "|") + "]"
}

// ParseCommand は先頭の引数をサブコマンドとして解釈する。
// 2つ目以降の引数は無視する。打ち間違いでAPIが起動しないよう、未知の名前はエラーにする。
func ParseCommand(args []string) (Command, error) {
	if len(args) == 0 {
		return CommandServe, nil
	}
	for _, c := range commands {
		if args[0] == string(c) {
			return c, nil
		}
	}
	return "", &ErrUnknownCommand{Name: args[0]}
}
