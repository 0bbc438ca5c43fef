//go:build linux

package main

import _ "github.com/jaruizra/Remote-SteamDeck-RC-for-OpenHD/device/uinput" // Register the uinput sink
