//go:build sdl

package main

import _ "github.com/jaruizra/Remote-SteamDeck-RC-for-OpenHD/device/sdljoy" // Register the SDL source
