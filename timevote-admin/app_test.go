package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.dedis.ch/kyber/v3/util/key"
	"go.dedis.ch/onet/v3/log"

	timevote "go.dedis.ch/timevote"
)

func TestMain(m *testing.M) {
	log.MainTest(m)
}

func TestParseKey(t *testing.T) {
	_, err := parseKey("r")
	assert.NotNil(t, err)

	_, err = parseKey("")
	assert.NotNil(t, err)

	kp := key.NewKeyPair(timevote.Suite)
	p, err := parseKey(kp.Public.String())
	assert.Nil(t, err)
	assert.True(t, kp.Public.Equal(p))
}

func TestParseScalar(t *testing.T) {
	_, err := parseScalar("r")
	assert.NotNil(t, err)

	kp := key.NewKeyPair(timevote.Suite)
	s, err := parseScalar(kp.Private.String())
	assert.Nil(t, err)
	assert.True(t, kp.Private.Equal(s))
}

func TestParseAdmins(t *testing.T) {
	admins, err := parseAdmins("")
	assert.Nil(t, admins, err)

	_, err = parseAdmins("1,2,a,3")
	assert.NotNil(t, err)

	admins, _ = parseAdmins("1,2,3")
	assert.Equal(t, []uint32{1, 2, 3}, admins)
}

func TestParseMint(t *testing.T) {
	_, _, err := parseMint("100")
	assert.NotNil(t, err)
	_, _, err = parseMint("a:100")
	assert.NotNil(t, err)
	_, _, err = parseMint("1:b")
	assert.NotNil(t, err)

	user, amount, err := parseMint("111112:5000")
	assert.Nil(t, err)
	assert.Equal(t, uint32(111112), user)
	assert.Equal(t, uint64(5000), amount)
}

func TestLoadSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.toml")
	assert.Nil(t, os.WriteFile(path, []byte(`
title = "budget vote"
description = "2026 participatory budget"
options = ["audit", "infrastructure", "outreach"]
start = 1790000000
end = 1790086400
shares-end = 1790172800
required-deposit = 100
min-share-threshold = 2
`), 0600))

	def, err := loadSession(path)
	assert.Nil(t, err)
	assert.Equal(t, "budget vote", def.Title)
	assert.Equal(t, 3, len(def.Options))
	assert.Equal(t, uint64(100), def.RequiredDeposit)
	assert.Equal(t, 2, def.MinShareThreshold)

	// Unordered deadlines are rejected.
	assert.Nil(t, os.WriteFile(path, []byte(`
title = "bad"
start = 2
end = 1
shares-end = 3
`), 0600))
	_, err = loadSession(path)
	assert.NotNil(t, err)

	_, err = loadSession(filepath.Join(t.TempDir(), "missing.toml"))
	assert.NotNil(t, err)
}
