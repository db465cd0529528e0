package cli

import (
	"fmt"

	"github.com/bettergovph/transparency-dashboard/pkg/version"
	"github.com/fatih/color"
)

// displayWelcomeBanner exibe o banner de boas-vindas com informações de versão.
func displayWelcomeBanner(versionStr string) {
	banner := `
          ____    _        _          _____ _____ _
         / ___|  / \      / \        | ____|_   _| |
        | |  _  / _ \    / _ \  _____|  _|   | | | |
        | |_| |/ ___ \  / ___ \|_____| |___  | | | |___
         \____/_/   \_\/_/   \_\     |_____| |_| |_____|
        `
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	blue := color.New(color.FgBlue, color.Bold).SprintFunc()

	fmt.Println(red(banner))

	// Obtem a string formatada da versão através do pacote version
	formattedVersion := version.FormatVersion()
	fmt.Println(blue(fmt.Sprintf("GAA Budget ETL (v%s)", formattedVersion)))
	if versionStr != "" && versionStr != version.Version {
		fmt.Println(blue(fmt.Sprintf("build: %s", versionStr)))
	}
}
