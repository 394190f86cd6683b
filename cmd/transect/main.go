/*
Copyright © 2019 the InMAP authors.
This file is part of the InMAP transect tool.

The InMAP transect tool is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

The InMAP transect tool is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with the InMAP transect tool.  If not, see <http://www.gnu.org/licenses/>.
*/

// Command transect creates stream cross-section elevation profiles.
package main

import (
	"fmt"
	"os"

	"github.com/spatialmodel/transect/transectutil"
)

func main() {
	if err := transectutil.Root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}
