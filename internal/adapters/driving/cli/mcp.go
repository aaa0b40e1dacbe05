package cli

import (
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/FamilOrujov/semsearch/internal/adapters/driving/mcp"
	"github.com/FamilOrujov/semsearch/internal/core/services"
)

// Port range scanned by 'mcp serve --http' when no port is given.
const (
	mcpPortStart = 8765
	mcpPortEnd   = 8865
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can query
your documents.

The server exposes the tools ask, search, ingest and count, and the
resource semsearch://stats.

By default the server communicates over stdio. Use --http to serve
streamable HTTP instead. Without --port the first free port from 8765 is used.

Examples:
  # Stdio mode (for desktop assistants)
  semsearch mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  semsearch mcp serve --http --port 8080

Assistant configuration:
  {
    "mcpServers": {
      "semsearch": {
        "command": "/path/to/semsearch",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().Bool("http", false, "serve streamable HTTP instead of stdio")
	mcpServeCmd.Flags().String("host", "localhost", "HTTP host to bind")
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = first free port from 8765)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

// mcpPorts builds the MCP ports from the wired services.
func mcpPorts() *mcp.Ports {
	return &mcp.Ports{
		Answer:  answerService,
		Index:   vectorIndex,
		Ingest:  ingestService,
		Stats:   indexService,
		Session: session,
	}
}

// mcpAddr resolves the HTTP listen address.
func mcpAddr(host string, port int) (string, error) {
	if port == 0 {
		p, err := services.FindAvailablePort(host, mcpPortStart, mcpPortEnd)
		if err != nil {
			return "", err
		}
		port = p
	}
	return net.JoinHostPort(host, strconv.Itoa(port)), nil
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	useHTTP, err := cmd.Flags().GetBool("http")
	if err != nil {
		return fmt.Errorf("getting http flag: %w", err)
	}
	host, err := cmd.Flags().GetString("host")
	if err != nil {
		return fmt.Errorf("getting host flag: %w", err)
	}
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}
	if port > 0 {
		useHTTP = true
	}

	if err := ensureServices(cmd, Options{Ping: true, NeedLLM: true, Guard: true}); err != nil {
		return err
	}

	server, err := mcp.NewServer(mcpPorts(), mcp.WithVersion(version))
	if err != nil {
		return err
	}

	if useHTTP {
		addr, err := mcpAddr(host, port)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
