// Package server exposes cssminify as MCP tools over stdio.
package server

import (
	"context"
	"fmt"
	"log"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/seanhalberthal/cssminify/internal/cssfile"
	"github.com/seanhalberthal/cssminify/internal/minifier"
	"github.com/seanhalberthal/cssminify/internal/types"
)

// minify holds the minifier instance for tool handlers.
var minify *minifier.Minifier

// Run starts the MCP server with the given minifier.
func Run(m *minifier.Minifier) {
	minify = m

	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "cssminify",
			Version: types.Version,
		},
		nil,
	)

	registerTools(server)

	if err := server.Run(context.Background(), &mcp.StdioTransport{}); err != nil {
		log.Fatal(err)
	}
}

func registerTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "cssminify_status",
		Description: "Get minifier version, supported extensions and compression methods",
	}, handleStatus)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "cssminify_minify",
		Description: "Minify CSS source text and return the result",
	}, handleMinify)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "cssminify_file",
		Description: "Minify one .css file into another .css file",
	}, handleFile)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "cssminify_batch",
		Description: "Minify many .css files or directories into an output folder",
	}, handleBatch)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "cssminify_validate",
		Description: "Check whether a path names a .css file",
	}, handleValidate)
}

// Tool input/output types

type statusInput struct{}

type statusOutput struct {
	types.StatusResponse
}

type minifyInput struct {
	CSS string `json:"css" jsonschema:"CSS source text to minify"`
}

type minifyOutput struct {
	types.MinifyResult
}

type fileInput struct {
	Input  string `json:"input" jsonschema:"Path of the .css file to read"`
	Output string `json:"output" jsonschema:"Path of the .css file to write"`
}

type fileOutput struct {
	types.FileResult
}

type batchInput struct {
	Paths       []string `json:"paths" jsonschema:"Files or directories to minify"`
	OutputDir   string   `json:"output_dir" jsonschema:"Folder that receives the minified files"`
	Recursive   bool     `json:"recursive,omitempty" jsonschema:"Descend into subdirectories of directory inputs"`
	Incremental bool     `json:"incremental,omitempty" jsonschema:"Skip files unchanged since the last run"`
}

type batchOutput struct {
	types.BatchResult
}

type validateInput struct {
	Path string `json:"path" jsonschema:"Path to check"`
}

type validateOutput struct {
	types.ValidateResult
}

// Tool handlers

func handleStatus(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[statusInput]) (*mcp.CallToolResultFor[statusOutput], error) {
	return &mcp.CallToolResultFor[statusOutput]{
		StructuredContent: statusOutput{StatusResponse: minify.Status()},
	}, nil
}

func handleMinify(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[minifyInput]) (*mcp.CallToolResultFor[minifyOutput], error) {
	result := minify.Source(params.Arguments.CSS)
	return &mcp.CallToolResultFor[minifyOutput]{StructuredContent: minifyOutput{MinifyResult: result}}, nil
}

func handleFile(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[fileInput]) (*mcp.CallToolResultFor[fileOutput], error) {
	input := params.Arguments
	if input.Input == "" {
		return &mcp.CallToolResultFor[fileOutput]{IsError: true}, fmt.Errorf("input is required")
	}
	if input.Output == "" {
		return &mcp.CallToolResultFor[fileOutput]{IsError: true}, fmt.Errorf("output is required")
	}

	result, err := minify.File(input.Input, input.Output)
	if err != nil {
		return &mcp.CallToolResultFor[fileOutput]{IsError: true}, err
	}

	return &mcp.CallToolResultFor[fileOutput]{StructuredContent: fileOutput{FileResult: *result}}, nil
}

func handleBatch(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[batchInput]) (*mcp.CallToolResultFor[batchOutput], error) {
	input := params.Arguments
	if len(input.Paths) == 0 {
		return &mcp.CallToolResultFor[batchOutput]{IsError: true}, fmt.Errorf("paths is required")
	}
	if input.OutputDir == "" {
		return &mcp.CallToolResultFor[batchOutput]{IsError: true}, fmt.Errorf("output_dir is required")
	}

	result, err := minify.Batch(ctx, minifier.BatchOptions{
		Inputs:      input.Paths,
		OutputDir:   input.OutputDir,
		Recursive:   input.Recursive,
		Incremental: input.Incremental,
	})
	if err != nil {
		return &mcp.CallToolResultFor[batchOutput]{IsError: true}, err
	}

	return &mcp.CallToolResultFor[batchOutput]{
		StructuredContent: batchOutput{BatchResult: *result},
		IsError:           result.Summary.Failed > 0,
	}, nil
}

func handleValidate(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[validateInput]) (*mcp.CallToolResultFor[validateOutput], error) {
	path := params.Arguments.Path
	if path == "" {
		return &mcp.CallToolResultFor[validateOutput]{IsError: true}, fmt.Errorf("path is required")
	}

	return &mcp.CallToolResultFor[validateOutput]{
		StructuredContent: validateOutput{ValidateResult: types.ValidateResult{
			Path:  path,
			Valid: cssfile.Validate(path),
		}},
	}, nil
}
