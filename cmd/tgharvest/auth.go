package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"tgharvest/pkg/auth"
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage Telegram credentials and the session",
	Long: `Manage the stored Telegram API credentials and the MTProto session.

Credentials are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - Environment variables (read-only fallback)

Get your api_id and api_hash from https://my.telegram.org.`,
}

// loginCmd represents the auth login command
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store credentials and authorize the session",
	Long: `Store Telegram API credentials and run the sign-in flow.

You will be prompted for:
  - API ID and API hash (from https://my.telegram.org)
  - Phone number in international format
  - The login code Telegram sends you
  - Your 2FA password, if the account has one`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

// statusCmd represents the auth status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check whether the stored session is authorized",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

// logoutCmd represents the auth logout command
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove stored credentials and the local session",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(statusCmd)
	authCmd.AddCommand(logoutCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	reader := bufio.NewReader(os.Stdin)

	creds, err := promptCredentials(reader)
	if err != nil {
		return err
	}

	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("initialize credential store: %w", err)
	}
	if err := manager.Save(creds); err != nil {
		return fmt.Errorf("store credentials: %w", err)
	}
	fmt.Println("Credentials stored.")

	client, err := newTelegramClient()
	if err != nil {
		return err
	}
	if err := client.Login(cmd.Context(), &stdinPrompter{reader: reader}); err != nil {
		return fmt.Errorf("sign in: %w", err)
	}

	fmt.Println("Session authorized. You can now run 'tgharvest harvest'.")
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	client, err := newTelegramClient()
	if err != nil {
		return err
	}

	authorized, err := client.AuthStatus(cmd.Context())
	if err != nil {
		return err
	}
	if authorized {
		fmt.Println("Session is authorized.")
	} else {
		fmt.Println("Session is not authorized. Run 'tgharvest auth login'.")
	}
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("initialize credential store: %w", err)
	}
	if err := manager.Delete(); err != nil && err != auth.ErrCredentialsNotFound {
		return fmt.Errorf("remove credentials: %w", err)
	}

	if err := os.Remove(cfg.SessionPath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session file: %w", err)
	}

	fmt.Println("Credentials and session removed.")
	return nil
}

// promptCredentials collects API credentials interactively. The API hash
// is read without echo.
func promptCredentials(reader *bufio.Reader) (*auth.Credentials, error) {
	fmt.Print("API ID: ")
	idLine, err := reader.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("read api id: %w", err)
	}
	apiID, err := strconv.Atoi(strings.TrimSpace(idLine))
	if err != nil {
		return nil, fmt.Errorf("api id must be a number")
	}

	fmt.Print("API hash: ")
	apiHash, err := readPassword(reader)
	if err != nil {
		return nil, fmt.Errorf("read api hash: %w", err)
	}

	fmt.Print("Phone (international format, e.g. +15551234567): ")
	phoneLine, err := reader.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("read phone: %w", err)
	}

	creds := &auth.Credentials{
		APIID:   apiID,
		APIHash: strings.TrimSpace(apiHash),
		Phone:   strings.TrimSpace(phoneLine),
	}
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	return creds, nil
}

// stdinPrompter feeds the interactive parts of the sign-in flow from the
// terminal.
type stdinPrompter struct {
	reader *bufio.Reader
}

func (p *stdinPrompter) Code() (string, error) {
	fmt.Print("Login code: ")
	line, err := p.reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (p *stdinPrompter) Password() (string, error) {
	fmt.Print("2FA password: ")
	return readPassword(p.reader)
}

// readPassword reads a line from stdin without echoing when attached to
// a terminal.
func readPassword(reader *bufio.Reader) (string, error) {
	if term.IsTerminal(int(syscall.Stdin)) {
		password, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err == nil {
			return string(password), nil
		}
	}

	input, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(input), nil
}
