package jsimports_test

import (
	"testing"

	"github.com/ariekogan/adas-mcp-toolbox-buider-sub005/pkg/connector/jsimports"
	"github.com/stretchr/testify/assert"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "commonjs",
			src:  `const db = require('better-sqlite3'); const { Server } = require("@modelcontextprotocol/sdk/server/index.js");`,
			want: []string{"better-sqlite3", "@modelcontextprotocol/sdk/server/index.js"},
		},
		{
			name: "es module forms",
			src: `import express from 'express';
import { z } from "zod";
import * as path from 'node:path';
import 'dotenv/config';
import {
  McpServer,
  ResourceTemplate,
} from '@modelcontextprotocol/sdk/server/mcp.js';
`,
			want: []string{"express", "zod", "node:path", "dotenv/config", "@modelcontextprotocol/sdk/server/mcp.js"},
		},
		{
			name: "dynamic import and re-export",
			src: `export { handler } from './handler.js';
export * from "lodash";
const mod = await import('pg');`,
			want: []string{"./handler.js", "lodash", "pg"},
		},
		{
			name: "comments are ignored",
			src: `// const x = require('commented-out');
/* import y from 'also-commented';
   require('still-commented') */
const url = "https://registry.npmjs.org"; const ok = require('axios'); // require('trailing')`,
			want: []string{"axios"},
		},
		{
			name: "comment markers inside strings",
			src: `const glob = 'tools/*.js';
const db = require('better-sqlite3');
/** helper */
function load() {}
const u = 'see // docs'; const x = require('lodash');`,
			want: []string{"better-sqlite3", "lodash"},
		},
		{
			name: "import text inside a message is not a specifier",
			src:  `throw new Error("cannot import data from 'source'"); const s = "require('fake')";`,
			want: []string{},
		},
		{
			name: "escaped quotes",
			src:  `const m = 'it\'s /* not a comment'; require("pg");`,
			want: []string{"pg"},
		},
		{
			name: "template literals",
			src: "const a = `/* ${require('chalk').red('x')} import y from 'nope'`;\n" +
				"const b = `${ { k: `${1}` }.k }`; const c = require('dayjs');",
			want: []string{"chalk", "dayjs"},
		},
		{
			name: "regular expression literals",
			src:  `const q = s.replace(/'|"/g, ''); const n = total / 2; const p = require('pg'); x = /\/\*/;`,
			want: []string{"pg"},
		},
		{
			name: "duplicates keep first appearance",
			src:  `require('b'); import a from 'a'; require('b'); import 'a';`,
			want: []string{"b", "a"},
		},
		{
			name: "no imports",
			src:  `console.log("hello")`,
			want: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, jsimports.Extract(tt.src))
		})
	}
}
